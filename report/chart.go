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
	"io"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
)

// RenderStackDistributionChart writes a standalone HTML bar chart of r's
// stack-distribution histogram to w, for `stack-summary --chart`. It has no
// effect on the JSON report shape - it is an alternative rendering of the
// same StackSummaryReport.
func RenderStackDistributionChart(r StackSummaryReport, w io.Writer) error {
	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{
			Title:    fmt.Sprintf("%s stack distribution", r.Summary.Architecture),
			Subtitle: fmt.Sprintf("max total stack: %d (%s)", r.Summary.MaxTotalStackConsumption, r.Summary.FunctionWithMaxTotalStack),
		}),
	)

	bar.SetXAxis([]string{"small", "medium", "large", "huge"}).
		AddSeries("functions", []opts.BarData{
			{Value: r.Summary.StackDistribution.Small},
			{Value: r.Summary.StackDistribution.Medium},
			{Value: r.Summary.StackDistribution.Large},
			{Value: r.Summary.StackDistribution.Huge},
		})

	return bar.Render(w)
}
