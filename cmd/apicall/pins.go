package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/GriffinCanCode/apimanager/internal/config"
	"github.com/GriffinCanCode/apimanager/internal/trust"
	"github.com/spf13/cobra"
)

func newPinsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "pins [dir]",
		Short: "List the domains and pins in a pin bundle",
		Long: `List the domains and pins in a pin bundle (default API_PINS_DIR).

A bundle directory holds one subdirectory per domain with .pem, .crt, .cer or
.der certificates, plus an optional pins.yaml with base64 SHA-256 SPKI pins.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := config.LoadOrDefault().Trust.PinsDir
			if len(args) == 1 {
				dir = args[0]
			}
			if dir == "" {
				return fmt.Errorf("no pin directory given and API_PINS_DIR is not set")
			}

			bundle, err := trust.LoadBundle(dir)
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "DOMAIN\tCERTIFICATES\tPUBLIC KEYS")
			for _, domain := range bundle.Domains() {
				fmt.Fprintf(w, "%s\t%d\t%d\n", domain, len(bundle.Certificates(domain)), len(bundle.PublicKeyHashes(domain)))
			}
			return w.Flush()
		},
	}
}
