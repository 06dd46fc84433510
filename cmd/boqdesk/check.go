package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"boqdesk/internal/importer"
	"boqdesk/internal/model"
	"boqdesk/internal/server"
)

var errRowsFailed = errors.New("some rows failed validation")

func newCheckCmd(root *rootOptions) *cobra.Command {
	var eventID string
	cmd := &cobra.Command{
		Use:   "check <file>",
		Short: "离线校验导入文件（不写入任务）",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}

			rt, err := root.open()
			if err != nil {
				return err
			}
			defer rt.Close()

			// 不记录导入尝试，也不建议分派
			coord := importer.NewCoordinator(importer.Dependencies{
				References: rt.store,
				Events:     rt.store,
				Tasks:      rt.store,
			}, server.ImportOptions(rt.cfg.Import), rt.log)

			res, err := coord.Preview(cmd.Context(), importer.PreviewInput{
				EventID:  eventID,
				Filename: filepath.Base(args[0]),
				Data:     data,
			})
			if err != nil {
				var ffe *importer.FileFormatError
				if errors.As(err, &ffe) {
					fmt.Fprintln(cmd.ErrOrStderr(), ffe.Message)
					for _, e := range ffe.Errors {
						fmt.Fprintf(cmd.ErrOrStderr(), "  - %s\n", e)
					}
				}
				return err
			}

			if err := printReport(cmd.OutOrStdout(), res); err != nil {
				return err
			}
			if res.Stats.Errors > 0 {
				return errRowsFailed
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&eventID, "event", "", "目标活动 ID")
	_ = cmd.MarkFlagRequired("event")
	return cmd
}

// printReport 逐行输出预览结果，LINE 为源文件行号
func printReport(w io.Writer, res *model.PreviewResult) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "LINE\tS.NO\tTASK\tDEPARTMENT\tSTATUS\tMESSAGES")
	for _, r := range res.Rows {
		sNo := "-"
		if r.SequenceNumber != nil {
			sNo = fmt.Sprint(*r.SequenceNumber)
		}
		msgs := append(append([]string{}, r.Errors...), r.Warnings...)
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%s\n",
			r.Line, sNo, r.TaskName, r.DepartmentName, r.Severity(), strings.Join(msgs, "; "))
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	_, err := fmt.Fprintf(w, "\ntotal=%d valid=%d warnings=%d errors=%d\n",
		res.Stats.Total, res.Stats.Valid, res.Stats.Warnings, res.Stats.Errors)
	return err
}
