package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"studio/internal/domain"
	"studio/internal/studio"
)

var (
	topUpPack   string
	topUpAmount int
)

var creditsCmd = &cobra.Command{
	Use:   "credits",
	Short: "Show the balance and subscription state.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return withStudio(cmd.Context(), func(st *studio.Studio) error {
			econ := st.Store().Economy()
			fmt.Fprintf(cmd.OutOrStdout(), "credits %d  subscribed %t  cost per image %d  next flow %s\n",
				econ.Credits, econ.Subscribed, st.ImageCost(), domain.FlowFor(econ.Subscribed))
			return nil
		})
	},
}

var topUpCmd = &cobra.Command{
	Use:   "topup",
	Short: "Add credits from a pack or an amount.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return withStudio(cmd.Context(), func(st *studio.Studio) error {
			econ, err := st.TopUp(cmd.Context(), topUpPack, topUpAmount)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "credits %d\n", econ.Credits)
			return nil
		})
	},
}

func init() {
	topUpCmd.Flags().StringVar(&topUpPack, "pack", "", "pack id (starter, pro, empire)")
	topUpCmd.Flags().IntVar(&topUpAmount, "amount", 0, "credit amount when no pack is given")
	creditsCmd.AddCommand(topUpCmd)
}
