package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/MrWong99/ohbot/pkg/catalog"
)

func voicesCmd() *cobra.Command {
	var jsonOutput bool
	cmd := &cobra.Command{
		Use:   "voices",
		Short: "List the available voices",
		Args:  cobra.NoArgs,
		RunE: func(*cobra.Command, []string) error {
			voices := catalog.Default().Voices()
			if jsonOutput {
				return printJSON(voices)
			}
			tw := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintf(tw, "#\tID\tNAME\tGENDER\tRATE\n")
			for i, v := range voices {
				fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%.2f\n", i+1, v.ID, v.Name, v.Gender, v.PlaybackRate)
			}
			return tw.Flush()
		},
	}
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "output as JSON")
	return cmd
}

func languagesCmd() *cobra.Command {
	var jsonOutput bool
	cmd := &cobra.Command{
		Use:   "languages",
		Short: "List the available speech languages",
		Args:  cobra.NoArgs,
		RunE: func(*cobra.Command, []string) error {
			c := catalog.Default()
			langs := c.Languages()
			if jsonOutput {
				return printJSON(langs)
			}
			def := c.DefaultLanguage().ID
			tw := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintf(tw, "ID\tNAME\tSYNTH LOCALE\tALIASES\tNOTES\n")
			for _, l := range langs {
				var notes []string
				if l.ID == def {
					notes = append(notes, "default")
				}
				if l.SingleGender {
					notes = append(notes, "single voice bank")
				}
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", l.ID, l.Name, l.SynthLocale,
					strings.Join(l.Locales, ","), strings.Join(notes, ", "))
			}
			return tw.Flush()
		},
	}
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "output as JSON")
	return cmd
}

func printJSON(v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(data))
	return nil
}
