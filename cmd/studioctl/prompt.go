package main

import (
	"fmt"
	"math/rand/v2"
	"strings"

	"github.com/spf13/cobra"

	"studio/internal/domain"
	"studio/internal/prompt"
)

var (
	promptResolution string
	brandName        string
	brandTone        string

	templateOptions  map[string]string
	templateSurprise bool
	templateSeed     uint64
	templateProducts []string
	templateModel    string
	templateRoom     string
	templateLogo     string
)

var promptCmd = &cobra.Command{
	Use:   "prompt",
	Short: "Preview synthesized instructions without calling the image service.",
}

var promptTextCmd = &cobra.Command{
	Use:   "text <request>",
	Short: "Show the instruction built from free text.",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		res, err := domain.ParseResolution(promptResolution, domain.Resolution2K)
		if err != nil {
			return err
		}
		in := prompt.TextInput{Text: strings.Join(args, " "), Resolution: res}
		if brandName != "" {
			in.Brand = &domain.BrandProfile{Name: brandName, Tone: brandTone, ApplyBrandTone: true}
		}
		fmt.Fprintf(cmd.OutOrStdout(), "intent: %s\n\n%s\n", prompt.Classify(in.Text), prompt.NewSynthesizer(nil).FromText(in))
		return nil
	},
}

var promptTemplateCmd = &cobra.Command{
	Use:   "template <fashion|product|flyer|interior>",
	Short: "Show the instruction and reference order of a template.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		kind, err := prompt.ParseKind(args[0])
		if err != nil {
			return err
		}
		var picker prompt.Picker
		if cmd.Flags().Changed("seed") {
			picker = rand.New(rand.NewPCG(templateSeed, templateSeed))
		}
		sel := prompt.Selection{
			Kind:       kind,
			Options:    templateOptions,
			Surprise:   templateSurprise,
			Products:   fileUploads(templateProducts),
			Model:      optionalUpload(templateModel),
			Background: optionalUpload(templateRoom),
			Logo:       optionalUpload(templateLogo),
		}
		draft, err := prompt.NewSynthesizer(picker).FromTemplate(sel)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		fmt.Fprintln(out, draft.Instruction)
		for i, ref := range draft.References {
			fmt.Fprintf(out, "ref %d: %s\n", i+1, ref.Name)
		}
		return nil
	},
}

func init() {
	promptTextCmd.Flags().StringVar(&promptResolution, "resolution", "2K", "target resolution (1K, 2K, 4K)")
	promptTextCmd.Flags().StringVar(&brandName, "brand", "", "brand name to inject")
	promptTextCmd.Flags().StringVar(&brandTone, "tone", "", "brand tone to inject")

	f := promptTemplateCmd.Flags()
	f.StringToStringVarP(&templateOptions, "option", "o", nil, "option selection, e.g. -o placement=podium")
	f.BoolVar(&templateSurprise, "surprise", false, "let the studio pick the style")
	f.Uint64Var(&templateSeed, "seed", 0, "seed for surprise picks")
	f.StringSliceVarP(&templateProducts, "product", "p", nil, "product image (repeatable)")
	f.StringVar(&templateModel, "model-image", "", "model reference image")
	f.StringVar(&templateRoom, "background", "", "background or base room image")
	f.StringVar(&templateLogo, "logo", "", "logo image")

	promptCmd.AddCommand(promptTextCmd, promptTemplateCmd)
}
