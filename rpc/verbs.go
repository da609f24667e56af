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

package rpc

import (
	"time"

	"github.com/jetsetilly/elfscope/pathfind"
	"github.com/jetsetilly/elfscope/prefs"
	"github.com/jetsetilly/elfscope/report"
)

// Info answers the `info` verb: a summary of the loaded binary.
func Info(path string, p *prefs.Preferences) Envelope {
	started := time.Now()

	pl, err := Load(path, p)
	if err != nil {
		return envelope(nil, err, started)
	}

	return envelope(report.BuildInfoReport(pl.Binary), nil, started)
}

// Analyze answers the `analyze` verb: the full call-relationship report.
func Analyze(path string, p *prefs.Preferences) Envelope {
	started := time.Now()

	pl, err := Load(path, p)
	if err != nil {
		return envelope(nil, err, started)
	}

	r := report.BuildCallRelationshipReport(pl.Binary, pl.Graph, pl.Disasm, time.Now())
	return envelope(r, nil, started)
}

// PathsOptions carries the `paths` verb's CLI-facing parameters.
type PathsOptions struct {
	Target            string
	Source            string
	MaxDepth          int
	IncludeCycles     bool
	IncludeUnresolved bool
}

// Paths answers the `paths` verb.
func Paths(path string, p *prefs.Preferences, opts PathsOptions) Envelope {
	started := time.Now()

	pl, err := Load(path, p)
	if err != nil {
		return envelope(nil, err, started)
	}

	maxDepth := opts.MaxDepth
	if maxDepth <= 0 {
		maxDepth = p.MaxPathDepth.Get()
	}

	ps, err := pathfind.Find(pl.Graph, opts.Target, pathfind.Options{
		Source:            opts.Source,
		MaxDepth:          maxDepth,
		IncludeCycles:     opts.IncludeCycles,
		IncludeUnresolved: opts.IncludeUnresolved,
	})
	if err != nil {
		return envelope(nil, err, started)
	}

	return envelope(report.BuildPathReport(ps, maxDepth), nil, started)
}

// Function answers the `function`/`stack` verbs: the StackReport for a
// single named function.
func Function(path string, p *prefs.Preferences, name string) Envelope {
	started := time.Now()

	pl, err := Load(path, p)
	if err != nil {
		return envelope(nil, err, started)
	}

	sr, err := pl.Analysis.FunctionStack(name)
	if err != nil {
		return envelope(nil, err, started)
	}

	out := report.BuildStackReport(sr, pl.Analysis.Frame(name), pl.Analysis.Policy())
	return envelope(out, nil, started)
}

// Summary answers the `summary`/`stack-summary` verbs.
func Summary(path string, p *prefs.Preferences, topK int) Envelope {
	started := time.Now()

	pl, err := Load(path, p)
	if err != nil {
		return envelope(nil, err, started)
	}

	s := pl.Analysis.Summary(topK)
	out := report.BuildStackSummaryReport(s, pl.Analysis.Policy())
	return envelope(out, nil, started)
}

// CompleteOptions carries every parameter the composite `complete` verb
// accepts, forwarding to whichever of Paths/Function it ends up needing.
//
// Paths and UnreachedFrom are mutually exclusive: Paths asks for one
// specific source/target path (the `-interactive` case), while
// UnreachedFrom asks for a path from that entry function to every function
// the call graph never reaches from it (the default audit case). Paths
// takes priority if both are set.
type CompleteOptions struct {
	Paths         *PathsOptions
	UnreachedFrom string
	Function      string
	TopK          int
}

// CompleteReport bundles every report the `complete` verb assembles in
// one call, so a single CLI or MCP round trip can retrieve the full
// picture of a binary without re-loading it per verb.
type CompleteReport struct {
	Info           report.InfoReport             `json:"info"`
	Analysis       report.CallRelationshipReport `json:"analysis"`
	Paths          *report.PathReport            `json:"paths,omitempty"`
	UnreachedPaths []report.PathReport           `json:"unreached_paths,omitempty"`
	Function       *report.StackReport           `json:"function,omitempty"`
	StackSummary   report.StackSummaryReport     `json:"stack_summary"`
}

// Complete answers the composite `complete` verb: it runs the full
// pipeline once and returns every report in one envelope, saving a caller
// that wants "everything" from re-loading and re-analyzing the binary
// once per verb.
func Complete(path string, p *prefs.Preferences, opts CompleteOptions) Envelope {
	started := time.Now()

	pl, err := Load(path, p)
	if err != nil {
		return envelope(nil, err, started)
	}

	out := CompleteReport{
		Info:         report.BuildInfoReport(pl.Binary),
		Analysis:     report.BuildCallRelationshipReport(pl.Binary, pl.Graph, pl.Disasm, time.Now()),
		StackSummary: report.BuildStackSummaryReport(pl.Analysis.Summary(opts.TopK), pl.Analysis.Policy()),
	}

	if opts.Paths != nil {
		maxDepth := opts.Paths.MaxDepth
		if maxDepth <= 0 {
			maxDepth = p.MaxPathDepth.Get()
		}
		ps, err := pathfind.Find(pl.Graph, opts.Paths.Target, pathfind.Options{
			Source:            opts.Paths.Source,
			MaxDepth:          maxDepth,
			IncludeCycles:     opts.Paths.IncludeCycles,
			IncludeUnresolved: opts.Paths.IncludeUnresolved,
		})
		if err != nil {
			return envelope(nil, err, started)
		}
		r := report.BuildPathReport(ps, maxDepth)
		out.Paths = &r
	} else if opts.UnreachedFrom != "" {
		maxDepth := p.MaxPathDepth.Get()
		for _, target := range pathfind.Unreached(pl.Graph, opts.UnreachedFrom) {
			ps, err := pathfind.Find(pl.Graph, target, pathfind.Options{Source: opts.UnreachedFrom, MaxDepth: maxDepth})
			if err != nil {
				return envelope(nil, err, started)
			}
			out.UnreachedPaths = append(out.UnreachedPaths, report.BuildPathReport(ps, maxDepth))
		}
	}

	if opts.Function != "" {
		sr, err := pl.Analysis.FunctionStack(opts.Function)
		if err != nil {
			return envelope(nil, err, started)
		}
		r := report.BuildStackReport(sr, pl.Analysis.Frame(opts.Function), pl.Analysis.Policy())
		out.Function = &r
	}

	return envelope(out, nil, started)
}
