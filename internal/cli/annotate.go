package cli

import (
	"bytes"
	"fmt"
	"io"
	"os"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/imgajeed76/relstamp/internal/annotate"
	"github.com/imgajeed76/relstamp/internal/diff"
	"github.com/imgajeed76/relstamp/internal/ui/styles"
	"github.com/imgajeed76/relstamp/internal/util"
)

func newAnnotateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "annotate [file...]",
		Short: "Replace timestamps in HTML pages with relative times",
		Long: `Run one annotation pass over each page.

Every element with the marker class has its content replaced by
<time datetime="ORIGINAL">N units ago</time>. Without files the page is
read from stdin and written to stdout.

Error policies (--on-error):
  skip     leave elements with unusable timestamps untouched (default)
  fail     abort before changing anything
  legacy   render "NaN seconds ago" and negative ages instead of rejecting

Examples:
  relstamp annotate < scores.html > out.html
  relstamp annotate -w public/*.html
  relstamp annotate --diff --now 2024-08-20T16:02:23Z scores.html`,
		RunE: runAnnotate,
	}

	cmd.Flags().BoolP("write", "w", false, "Rewrite files in place")
	cmd.Flags().Bool("diff", false, "Show a diff instead of the annotated page")
	cmd.Flags().String("class", "", "Marker class (overrides annotate.class)")
	cmd.Flags().String("on-error", "", "Error policy: skip, fail, legacy (overrides annotate.on_error)")
	cmd.Flags().String("now", "", "Reference time in RFC 3339 (default: the current time)")

	return cmd
}

func runAnnotate(cmd *cobra.Command, args []string) error {
	write, _ := cmd.Flags().GetBool("write")
	showDiff, _ := cmd.Flags().GetBool("diff")

	if write && showDiff {
		return util.NewError("--write and --diff cannot be combined").
			WithSuggestion("relstamp annotate --diff page.html   # Preview first, then -w")
	}
	if write && len(args) == 0 {
		return util.MissingArgumentError("file", "relstamp annotate -w page.html")
	}

	cfg, logger, err := loadSettings(cmd)
	if err != nil {
		return err
	}
	a, err := buildAnnotator(cmd, cfg, logger)
	if err != nil {
		return err
	}

	stdout := cmd.OutOrStdout()
	stderr := cmd.ErrOrStderr()

	if len(args) == 0 {
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return fmt.Errorf("read stdin: %w", err)
		}
		return annotateOne(a, "<stdin>", data, stdout, stderr, showDiff)
	}

	for _, path := range args {
		info, err := os.Stat(path)
		if err != nil {
			return err
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return err
		}

		if !write {
			if err := annotateOne(a, path, data, stdout, stderr, showDiff); err != nil {
				return err
			}
			continue
		}

		var out bytes.Buffer
		if err := annotateOne(a, path, data, &out, stderr, false); err != nil {
			return err
		}
		if err := os.WriteFile(path, out.Bytes(), info.Mode().Perm()); err != nil {
			return fmt.Errorf("write %s: %w", path, err)
		}
	}
	return nil
}

// annotateOne runs a pass over one page and writes either the annotated
// document or its diff to w. The summary line goes to summary.
func annotateOne(a *annotate.Annotator, name string, data []byte, w, summary io.Writer, showDiff bool) error {
	p, err := annotate.Load(bytes.NewReader(data))
	if err != nil {
		return err
	}
	before, err := p.HTML()
	if err != nil {
		return err
	}

	report, err := a.Annotate(p)
	if err != nil {
		return util.AnnotationFailedError(name, err)
	}
	after, err := p.HTML()
	if err != nil {
		return err
	}

	if showDiff {
		r := diff.Compute(name, before, after, 3)
		if r.Changed() {
			fmt.Fprint(w, diff.Format(r, !colorFor(w)))
		}
	} else if _, err := io.WriteString(w, after); err != nil {
		return err
	}

	fmt.Fprintln(summary, formatSummary(name, report, len(data), len(after)))
	return nil
}

func formatSummary(name string, report annotate.Report, in, out int) string {
	msg := fmt.Sprintf("%s: %s, %s %s",
		name,
		styles.Count(report.Annotated(), "annotated"),
		styles.Count(report.Skipped(), "skipped"),
		styles.MutedMsg(fmt.Sprintf("(%s %s %s)", humanize.Bytes(uint64(in)), styles.SymbolArrow, humanize.Bytes(uint64(out)))))
	if report.Skipped() > 0 {
		return styles.WarningMsg(msg)
	}
	return styles.SuccessMsg(msg)
}
