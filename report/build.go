// This file is part of ElfScope.
//
// ElfScope is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// ElfScope is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with ElfScope.  If not, see <https://www.gnu.org/licenses/>.

package report

import (
	"fmt"
	"time"

	"github.com/jetsetilly/elfscope/callgraph"
	"github.com/jetsetilly/elfscope/disasm"
	"github.com/jetsetilly/elfscope/elf"
	"github.com/jetsetilly/elfscope/pathfind"
	"github.com/jetsetilly/elfscope/stackanalysis"
)

func hexAddr(addr uint64) string {
	return fmt.Sprintf("0x%x", addr)
}

// TailCallPolicyName maps the stackanalysis package's internal policy
// constant to the string recorded in report metadata.
func TailCallPolicyName(p stackanalysis.TailCallPolicy) string {
	if p == stackanalysis.TailCallAddFrame {
		return "add-frame"
	}
	return "reuse-frame"
}

// BuildInfoReport assembles the `info` verb's document.
func BuildInfoReport(b *elf.Binary) InfoReport {
	numImports := 0
	for _, f := range b.Functions {
		if f.Kind == elf.KindImported {
			numImports++
		}
	}

	return InfoReport{
		Path:          b.Path,
		Architecture:  b.Architecture.String(),
		Bitness:       b.Bitness,
		Endianness:    b.Endianness.String(),
		EntryPoint:    hexAddr(b.EntryPoint),
		NumFunctions:  len(b.Functions) - numImports,
		NumImports:    numImports,
		NumSections:   len(b.Sections),
		NumPLTEntries: len(b.PLT),
	}
}

// BuildCallRelationshipReport assembles the `analyze` verb's document
// from a built graph. d supplies per-function decode gap counts for the
// statistics block.
func BuildCallRelationshipReport(b *elf.Binary, g *callgraph.CallGraph, d *disasm.Disassembler, exportTime time.Time) CallRelationshipReport {
	r := CallRelationshipReport{
		Metadata: Metadata{
			ToolName:     ToolName,
			Version:      Version,
			ExportTime:   exportTime.UTC().Format(time.RFC3339),
			ELFFile:      b.Path,
			Architecture: b.Architecture.String(),
		},
		Functions: make(map[string]FunctionEntry),
	}

	decodeGaps := 0

	for _, name := range g.Nodes() {
		n, _ := g.Node(name)

		entry := FunctionEntry{
			Name:     name,
			Address:  hexAddr(n.Address),
			External: n.External,
			Type:     "external",
		}

		if n.Function != nil {
			entry.Size = n.Function.Size
			entry.Type = n.Function.Kind.String()
			entry.Aliases = n.Function.Aliases
			if n.Function.Kind == elf.KindInternal {
				decodeGaps += len(d.DecodeGaps(n.Function))
			}
		}

		r.Functions[name] = entry

		for _, e := range g.Callees(name) {
			entry := CallRelationshipEntry{
				FromFunction: e.From,
				ToFunction:   e.To,
				FromAddress:  hexAddr(e.FromAddress),
				Instruction:  e.Instruction,
				Type:         e.Kind.String(),
			}
			if e.HasToAddress {
				entry.ToAddress = hexAddr(e.ToAddress)
			}
			r.CallRelationships = append(r.CallRelationships, entry)
		}
	}

	stats := g.Statistics()
	r.Statistics = CallStatistics{
		TotalFunctions:          stats.TotalFunctions,
		TotalCalls:              stats.TotalCalls,
		ExternalFunctions:       stats.ExternalFunctions,
		RecursiveFunctions:      stats.RecursiveFunctions,
		AverageCallsPerFunction: stats.AverageCallsPerFunc,
		DecodeGaps:              decodeGaps,
	}

	return r
}

// BuildPathReport assembles the `paths` verb's document from a PathSet.
func BuildPathReport(ps pathfind.PathSet, maxDepth int) PathReport {
	r := PathReport{
		Metadata: PathMetadata{
			Query: PathQuery{
				TargetFunction: ps.Target,
				SourceFunction: ps.Source,
				MaxDepth:       maxDepth,
			},
		},
		PathAnalysis: PathAnalysis{
			TargetFunction: ps.Target,
			SourceFunction: ps.Source,
			Statistics: PathStatistics{
				TotalPaths:   ps.Stats.TotalPaths,
				MaxDepth:     ps.Stats.MaxDepth,
				MinDepth:     ps.Stats.MinDepth,
				AverageDepth: ps.Stats.AverageDepth,
			},
		},
	}

	for _, p := range ps.Paths {
		entry := PathEntry{
			Path:   p.Nodes,
			Length: p.Len(),
		}
		for i, e := range p.Edges {
			entry.Steps = append(entry.Steps, StepEntry{
				Step:  i + 1,
				From:  e.From,
				To:    e.To,
				Calls: []string{e.Instruction},
			})
		}
		r.PathAnalysis.Paths = append(r.PathAnalysis.Paths, entry)
	}

	return r
}

// BuildStackReport assembles the `stack`/`function` verbs' document from
// a per-function StackReport and the StackFrame backing its local-frame
// estimate.
func BuildStackReport(sr stackanalysis.StackReport, frame stackanalysis.StackFrame, policy stackanalysis.TailCallPolicy) StackReport {
	return StackReport{
		Function:             sr.Function,
		LocalStackFrame:      sr.LocalStackFrame,
		StackConsumedByCalls: sr.StackConsumedByCalls,
		MaxTotalStack:        sr.MaxTotalStack,
		MaxStackCallPath:     sr.MaxStackCallPath,
		IsRecursive:          sr.IsRecursive,
		Confidence:           frame.Confidence.String(),
		DynamicAlloca:        frame.DynamicAlloca,
		TailCallPolicy:       TailCallPolicyName(policy),
	}
}

// BuildStackSummaryReport assembles the `stack-summary` verb's document.
func BuildStackSummaryReport(s stackanalysis.Summary, policy stackanalysis.TailCallPolicy) StackSummaryReport {
	r := StackSummaryReport{
		Summary: StackSummaryBody{
			Architecture:              s.Architecture,
			TotalFunctionsAnalyzed:    s.TotalFunctionsAnalyzed,
			MaxTotalStackConsumption:  s.MaxTotalStackConsumption,
			FunctionWithMaxTotalStack: s.FunctionWithMaxTotalStack,
			MaxTotalStackCallPath:     s.MaxTotalStackCallPath,
			StackDistribution: StackDistribution{
				Small:  s.Distribution[stackanalysis.BucketSmall],
				Medium: s.Distribution[stackanalysis.BucketMedium],
				Large:  s.Distribution[stackanalysis.BucketLarge],
				Huge:   s.Distribution[stackanalysis.BucketHuge],
			},
			TailCallPolicy: TailCallPolicyName(policy),
		},
	}

	for _, h := range s.HeavyFunctions {
		r.HeavyFunctions = append(r.HeavyFunctions, HeavyFunctionEntry{
			Function:         h.Function,
			MaxTotalStack:    h.MaxTotalStack,
			MaxStackCallPath: h.MaxStackCallPath,
			StackRatio:       h.StackRatio,
		})
	}

	return r
}
