package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"boqdesk/internal/seed"
)

func newSeedCmd(root *rootOptions) *cobra.Command {
	var file string
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "从 TOML 文件写入部门、用户与活动",
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := seed.Load(file)
			if err != nil {
				return err
			}

			rt, err := root.open()
			if err != nil {
				return err
			}
			defer rt.Close()

			counts, err := f.Apply(cmd.Context(), rt.store)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "seeded %d departments, %d users, %d events\n",
				counts.Departments, counts.Users, counts.Events)
			return nil
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "seed.toml", "seed 文件路径")
	return cmd
}
