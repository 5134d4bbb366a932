package main

import (
	"encoding/pem"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/slobbe/apk-provenance/internal/core"
	util "github.com/slobbe/apk-provenance/internal/helpers"
	"github.com/slobbe/apk-provenance/internal/signature"
)

func createFingerprintCommand(st *cliState) *cobra.Command {
	return &cobra.Command{
		Use:   "fingerprint FILE",
		Short: "Print the signer fingerprint of an APK or a DER/PEM certificate",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, err := certificateBytes(args[0])
			if err != nil {
				return err
			}
			sig, err := signature.FromCertificate(raw)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), sig)
			return nil
		},
	}
}

// certificateBytes returns the DER bytes of the signer of an APK, or of the
// certificate stored in src.
func certificateBytes(src string) ([]byte, error) {
	if util.HasExtension(src, ".apk") {
		return core.SignerCertificate(src, nil, core.DefaultGuard)
	}

	content, err := os.ReadFile(src)
	if err != nil {
		return nil, err
	}
	if block, _ := pem.Decode(content); block != nil {
		if block.Type != "CERTIFICATE" {
			return nil, fmt.Errorf("%s: unexpected PEM block %q", src, block.Type)
		}
		return block.Bytes, nil
	}
	return content, nil
}
