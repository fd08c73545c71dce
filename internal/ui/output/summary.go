package output

import (
	"fmt"
	"strings"
	"time"

	"github.com/muesli/termenv"
	"go.trai.ch/bb/internal/core/domain"
	"go.trai.ch/bb/internal/ui/style"
)

// Summary renders a one-line report of a finished pass, followed by one line
// per failed source.
func Summary(out *termenv.Output, res *domain.BuildResult, elapsed time.Duration) string {
	took := elapsed.Round(time.Millisecond)

	var head string
	var color termenv.Color
	switch {
	case res.UpToDate:
		head = fmt.Sprintf("%s up to date (%s)", style.Dot, took)
		color = termenv.RGBColor(string(style.Slate))
	case len(res.Failed) > 0:
		head = fmt.Sprintf("%s %s written, %d failed (%s)", style.Cross, plural(len(res.Written), "file"), len(res.Failed), took)
		color = termenv.RGBColor(string(style.Red))
	default:
		head = fmt.Sprintf("%s %s written (%s)", style.Check, plural(len(res.Written), "file"), took)
		color = termenv.RGBColor(string(style.Green))
	}

	lines := []string{out.String(head).Foreground(color).String()}
	if res.AtlasRebuilt {
		lines = append(lines, out.String("  sprite atlas rebuilt").Foreground(termenv.RGBColor(string(style.Iris))).String())
	}
	for _, f := range res.Failed {
		lines = append(lines, out.String("  "+style.Cross+" "+f).Foreground(termenv.RGBColor(string(style.Red))).String())
	}
	return strings.Join(lines, "\n") + "\n"
}

func plural(n int, noun string) string {
	if n == 1 {
		return "1 " + noun
	}
	return fmt.Sprintf("%d %ss", n, noun)
}
