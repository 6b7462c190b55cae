package main

import (
	"context"
	"encoding/base64"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"studio/internal/studio"
)

var (
	sendFiles   []string
	sendSession string
	sendOut     string
)

var sendCmd = &cobra.Command{
	Use:   "send [request]",
	Short: "Run one exchange and optionally save the produced image.",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		return withStudio(ctx, func(st *studio.Studio) error {
			sid := sendSession
			if sid == "" {
				sid = st.Store().ActiveID()
			}
			res, err := sendOrStop(ctx, st, studio.SendRequest{
				SessionID: sid,
				Text:      strings.Join(args, " "),
				Uploads:   fileUploads(sendFiles),
			})
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "session %s  mode %s  outcome %s  credits %d\n", res.SessionID, res.Mode, res.Outcome, res.Credits)
			if res.ModelTurn == nil {
				return nil
			}
			if res.ModelTurn.Text != "" {
				fmt.Fprintln(out, res.ModelTurn.Text)
			}
			att, ok := res.ModelTurn.FirstAttachment()
			if !ok || sendOut == "" {
				return nil
			}
			data, err := base64.StdEncoding.DecodeString(att.EncodedData)
			if err != nil {
				return fmt.Errorf("decode image: %w", err)
			}
			if err := os.WriteFile(sendOut, data, 0o644); err != nil {
				return err
			}
			fmt.Fprintf(out, "image written to %s\n", sendOut)
			return nil
		})
	},
}

type sendOutcome struct {
	res studio.SendResult
	err error
}

// sendOrStop runs a send and stops it when ctx is cancelled, so an
// interrupted command refunds instead of charging for an image nobody sees.
func sendOrStop(ctx context.Context, st *studio.Studio, req studio.SendRequest) (studio.SendResult, error) {
	done := make(chan sendOutcome, 1)
	go func() {
		res, err := st.Send(ctx, req)
		done <- sendOutcome{res: res, err: err}
	}()

	select {
	case o := <-done:
		return o.res, o.err
	case <-ctx.Done():
	}
	if st.Stop(req.SessionID) {
		return studio.SendResult{}, fmt.Errorf("send stopped, credits refunded: %w", ctx.Err())
	}
	// Not in flight yet, or already settled: the outcome is imminent.
	o := <-done
	return o.res, o.err
}

func init() {
	sendCmd.Flags().StringSliceVarP(&sendFiles, "file", "f", nil, "reference image (repeatable)")
	sendCmd.Flags().StringVarP(&sendSession, "session", "s", "", "session id (defaults to the most recent)")
	sendCmd.Flags().StringVarP(&sendOut, "out", "o", "", "write the produced image to this path")
}
