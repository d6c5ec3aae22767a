package main

import (
	"fmt"
	"io"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/numsphere/callflow/callsim"
)

var (
	callFrom   string
	callTo     string
	callDigits []string
)

var callCmd = &cobra.Command{
	Use:   "call <endpoint-url>",
	Short: "Place a simulated call against a running server",
	Long: `call drives a live voice endpoint the way the telephony provider
would: POST the inbound form, print what the caller hears, and press each
--digits value into the pending gather ("-" lets the gather time out).`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		caller := callsim.NewCaller(args[0], callFrom, callTo)
		out := cmd.OutOrStdout()

		turn, err := caller.Dial(cmd.Context())
		if err != nil {
			return err
		}
		printTurn(out, 1, turn)

		for i, digits := range callDigits {
			if turn.HungUp() {
				return errors.Errorf("call ended before digits %q could be pressed", digits)
			}
			if digits == "-" {
				turn, err = caller.TimeOut(cmd.Context(), turn)
			} else {
				turn, err = caller.Press(cmd.Context(), turn, digits)
			}
			if err != nil {
				return err
			}
			printTurn(out, i+2, turn)
		}

		return nil
	},
}

func printTurn(out io.Writer, n int, turn *callsim.CallTurn) {
	fmt.Fprintf(out, "--- turn %d\n", n)
	for _, line := range turn.Transcript() {
		fmt.Fprintf(out, "  \"%s\"\n", line)
	}
	if _, ok := turn.Gather(); ok {
		fmt.Fprintln(out, "  [waiting for a key press]")
	}
	if turn.HungUp() {
		fmt.Fprintln(out, "  [call ended]")
	}
}
