package main

import (
	"fmt"
	"net/url"
	"os"
	"strconv"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/numsphere/callflow/interp"
	"github.com/numsphere/callflow/model"
	"github.com/numsphere/callflow/twiml"
)

var (
	renderDigits []string
	renderFrom   string
	renderTo     string
)

var renderCmd = &cobra.Command{
	Use:   "render <flow.json>",
	Short: "Dry-run a flow and print each turn's markup",
	Long: `render compiles a flow document turn by turn without a server.
The first turn is the fresh call; each --digits value is fed to the
pending gather of the previous turn (use "-" for a timeout with no input).`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := os.ReadFile(args[0])
		if err != nil {
			return errors.Wrapf(err, "read %q", args[0])
		}
		flow, err := model.DecodeFlow(data)
		if err != nil {
			return errors.Wrapf(err, "decode %q", args[0])
		}

		comp := interp.New(flow)
		turn := interp.Turn{CallID: "CA-dry-run", From: renderFrom, To: renderTo}

		resp := comp.CompileEntry(turn)
		fmt.Fprintf(cmd.OutOrStdout(), "--- turn 1 (fresh call)\n%s\n", twiml.Render(resp))

		for i, digits := range renderDigits {
			blockID, retry, ok := pendingGather(resp)
			if !ok {
				return errors.Errorf("turn %d has no gather to answer with %q", i+1, digits)
			}
			turn.ResumeBlock = blockID
			turn.Retry = retry
			turn.Digits = digits
			if digits == "-" {
				turn.Digits = ""
			}

			resp = comp.Resume(turn)
			fmt.Fprintf(cmd.OutOrStdout(), "--- turn %d (digits %q)\n%s\n", i+2, turn.Digits, twiml.Render(resp))
		}
		return nil
	},
}

// pendingGather extracts the continuation encoded in a response's gather
// action URL.
func pendingGather(resp *twiml.Response) (model.BlockID, int, bool) {
	for _, node := range resp.Children {
		g, ok := node.(*twiml.Gather)
		if !ok {
			continue
		}
		u, err := url.Parse(g.Action)
		if err != nil {
			return "", 0, false
		}
		q := u.Query()
		retry, _ := strconv.Atoi(q.Get("retry"))
		return model.BlockID(q.Get("blockId")), retry, q.Get("blockId") != ""
	}
	return "", 0, false
}

func init() {
	renderCmd.Flags().StringSliceVar(&renderDigits, "digits", nil, "digits to press per turn, in order (\"-\" for timeout)")
	renderCmd.Flags().StringVar(&renderFrom, "from", "+15550001111", "caller number")
	renderCmd.Flags().StringVar(&renderTo, "to", "+15550002222", "called number")
}
