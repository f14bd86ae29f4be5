package report

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/marketsift/sift/internal/contracts"
	"github.com/marketsift/sift/internal/screen"
)

// Console renders a finished screening run as fixed-width text: the
// top rows, a processing-statistics block and the elapsed time.
// Presentation only; it never alters or returns anything the caller
// could act on.
type Console struct {
	out     io.Writer
	verbose bool
}

// NewConsole creates a console reporter. Verbose mode additionally
// lists every excluded symbol with its reasons.
func NewConsole(out io.Writer, verbose bool) *Console {
	return &Console{out: out, verbose: verbose}
}

// Emit writes the report for a result, truncated to the top rows. The
// full ranking in the result stays untouched.
func (c *Console) Emit(result *contracts.Result, top int) {
	fmt.Fprintln(c.out)
	if result.IsEmpty() {
		fmt.Fprintln(c.out, "No companies had sufficient data for analysis")
	} else {
		rows := result.TopRows(top)
		fmt.Fprintf(c.out, "Top %d Companies by %s:\n", len(rows), modelTitle(result.Model))
		c.printTable(rows, result.Spec)
	}

	fmt.Fprintln(c.out)
	fmt.Fprintln(c.out, "Processing Statistics:")
	printKeyValue(c.out, "Total companies analyzed", result.Stats.TotalSymbols)
	printKeyValue(c.out, "Companies included", result.Stats.Included)
	printKeyValue(c.out, "Companies excluded", result.Stats.Excluded)

	if c.verbose && result.Stats.Excluded > 0 {
		fmt.Fprintln(c.out)
		fmt.Fprintln(c.out, "Excluded Companies Details:")
		for _, symbol := range sortedSymbols(result.Stats.Reasons) {
			fmt.Fprintf(c.out, "   %s: %s\n", symbol, strings.Join(result.Stats.Reasons[symbol], "; "))
		}
	}

	fmt.Fprintf(c.out, "\nTotal execution time: %.2f seconds\n", result.Elapsed.Seconds())
}

// printTable renders rank + symbol + the model's components, plus the
// combined rank column for models ranked by combination.
func (c *Console) printTable(rows []contracts.Row, spec contracts.RankingSpec) {
	headers := []string{"RANK", "SYMBOL"}
	for _, name := range spec.Components {
		headers = append(headers, componentHeader(name))
	}
	combined := spec.Method == contracts.RankByCombined
	if combined {
		headers = append(headers, "COMBINED")
	}

	cells := make([][]string, 0, len(rows))
	for _, row := range rows {
		line := []string{fmt.Sprintf("%d", row.Rank), row.Symbol}
		for _, name := range spec.Components {
			line = append(line, formatComponent(name, row.Components[name]))
		}
		if combined {
			line = append(line, fmt.Sprintf("%.2f", row.CombinedRank))
		}
		cells = append(cells, line)
	}

	widths := columnWidths(headers, cells)
	printRow(c.out, headers, widths)
	printSeparator(c.out, widths)
	for _, line := range cells {
		printRow(c.out, line, widths)
	}
}

// modelTitle maps a model name to its display title.
func modelTitle(model string) string {
	switch model {
	case screen.ModelFactor:
		return "Factor Score"
	case screen.ModelMagicFormula:
		return "Magic Formula"
	case screen.ModelDividend:
		return "Dividend Quality"
	default:
		return model
	}
}

func componentHeader(name string) string {
	switch name {
	case screen.ComponentScore:
		return "SCORE"
	case screen.ComponentReturnOnCapital:
		return "ROC"
	case screen.ComponentEarningsYield:
		return "EY"
	case screen.ComponentDividendYield:
		return "YIELD %"
	case screen.ComponentConsecutiveYears:
		return "YEARS"
	default:
		return strings.ToUpper(name)
	}
}

func formatComponent(name string, value float64) string {
	switch name {
	case screen.ComponentScore, screen.ComponentDividendYield:
		return fmt.Sprintf("%.2f", value)
	case screen.ComponentConsecutiveYears:
		return fmt.Sprintf("%.0f", value)
	default:
		return fmt.Sprintf("%.4f", value)
	}
}

func columnWidths(headers []string, cells [][]string) []int {
	widths := make([]int, len(headers))
	for i, h := range headers {
		widths[i] = len(h)
	}
	for _, line := range cells {
		for i, cell := range line {
			if len(cell) > widths[i] {
				widths[i] = len(cell)
			}
		}
	}
	return widths
}

func printRow(out io.Writer, values []string, widths []int) {
	for i, val := range values {
		fmt.Fprintf(out, "%-*s", widths[i], val)
		if i < len(values)-1 {
			fmt.Fprint(out, "  ")
		}
	}
	fmt.Fprintln(out)
}

func printSeparator(out io.Writer, widths []int) {
	total := 0
	for i, w := range widths {
		total += w
		if i < len(widths)-1 {
			total += 2
		}
	}
	fmt.Fprintln(out, strings.Repeat("─", total))
}

func printKeyValue(out io.Writer, key string, value int) {
	fmt.Fprintf(out, "   %-24s : %d\n", key, value)
}

func sortedSymbols(reasons map[string][]string) []string {
	symbols := make([]string, 0, len(reasons))
	for symbol := range reasons {
		symbols = append(symbols, symbol)
	}
	sort.Strings(symbols)
	return symbols
}
