package scenario

import (
	"io"

	"github.com/Layr-Labs/txcontext/pkg/transition"
	"github.com/gocarina/gocsv"
	"github.com/pkg/errors"
)

// OutputRow is one emitted output as written to CSV.
type OutputRow struct {
	InvocationId string `csv:"invocation_id"`
	Index        int    `csv:"index"`
	Buffered     bool   `csv:"buffered"`
	Owner        string `csv:"owner"`
	Value        uint64 `csv:"value"`
	Address      string `csv:"address"`
	TreeSlot     uint8  `csv:"tree_slot"`
	DataHash     string `csv:"data_hash"`
	DataLength   int    `csv:"data_length"`
	OutputsRoot  string `csv:"outputs_root"`
}

// OutputRows decodes the output region of every emitting step. Steps that
// failed or only buffered their payload produce no rows.
func OutputRows(results []*StepResult) ([]*OutputRow, error) {
	rows := make([]*OutputRow, 0)
	for _, step := range results {
		res := step.Result
		if res == nil || res.OutputRegion == nil {
			continue
		}

		buffered, n, err := transition.DecodeOutputRegion(res.OutputRegion)
		if err != nil {
			return nil, errors.Wrapf(err, "step %d buffered outputs", step.Index)
		}
		own, _, err := transition.DecodeOutputRegion(res.OutputRegion[n:])
		if err != nil {
			return nil, errors.Wrapf(err, "step %d own outputs", step.Index)
		}

		for i, out := range append(buffered, own...) {
			row := &OutputRow{
				InvocationId: res.InvocationId,
				Index:        i,
				Buffered:     i < len(buffered),
				Owner:        out.Owner.String(),
				Value:        out.Value,
				TreeSlot:     out.TreeSlot,
				OutputsRoot:  res.OutputsRoot.String(),
			}
			if out.Address != nil {
				row.Address = out.Address.String()
			}
			if out.Content != nil {
				row.DataHash = out.Content.Hash.String()
				row.DataLength = len(out.Content.Data)
			}
			rows = append(rows, row)
		}
	}
	return rows, nil
}

func WriteOutputsCSV(w io.Writer, rows []*OutputRow) error {
	return gocsv.Marshal(rows, w)
}
