package importer

import (
	"context"

	"golang.org/x/sync/errgroup"

	"boqdesk/internal/model"
	"boqdesk/internal/reference"
)

// evaluate 对每行执行解析与校验，最后执行批次规则
// 行数超过阈值时并行处理；结果按下标写回，顺序与输入一致
func evaluate(ctx context.Context, rows []model.CandidateRow, snap *reference.Snapshot, opts Options) error {
	if len(rows) <= opts.ParallelThreshold || opts.Workers <= 1 {
		for i := range rows {
			evaluateRow(&rows[i], snap)
		}
	} else {
		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(opts.Workers)
		for i := range rows {
			i := i
			g.Go(func() error {
				if err := gctx.Err(); err != nil {
					return err
				}
				evaluateRow(&rows[i], snap)
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return err
		}
	}

	markDuplicateSequences(rows)
	return ctx.Err()
}

func evaluateRow(row *model.CandidateRow, snap *reference.Snapshot) {
	Resolve(row, snap)
	Validate(row)
}
