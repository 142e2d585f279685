package cli

import (
	"context"
	"encoding/json"

	"github.com/gabapcia/btcwatch/internal/addrcodec"

	"github.com/urfave/cli/v3"
)

// decodeResult is printed by the decode command.
type decodeResult struct {
	Decoded     bool                  `json:"decoded"`
	Address     string                `json:"address,omitempty"`
	ScriptKind  addrcodec.ScriptKind  `json:"scriptKind,omitempty"`
	AddressType addrcodec.AddressType `json:"addressType"`
}

// decodeScriptCommand returns a CLI command that derives the address locked
// by an output script.
//
// Usage example:
//
//	btcwatch decode --hex 0014751e76e8199196d454941c45d1b3a323f1433bd6 --type witness_v0_keyhash
func decodeScriptCommand() *cli.Command {
	return &cli.Command{
		Name:        "decode",
		Description: "Derives the address locked by an output script and prints it as JSON.",
		Usage:       "Decodes a scriptPubKey. Pass the spending scriptSig to resolve wrapped SegWit.",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "hex",
				Usage:    "Hex encoded scriptPubKey",
				Required: true,
			},
			&cli.StringFlag{
				Name:  "type",
				Usage: "Script type as reported by the node (e.g., pubkeyhash, witness_v0_keyhash); inferred when empty",
			},
			&cli.StringFlag{
				Name:  "scriptsig",
				Usage: "Hex encoded scriptSig of the spending input",
			},
			&cli.StringSliceFlag{
				Name:  "witness",
				Usage: "Hex encoded witness item of the spending input, repeated in stack order; the last item must commit to a wrapped witness program",
			},
			&cli.StringFlag{
				Name:  "network",
				Usage: "Network whose address prefixes are used (mainnet, testnet3, signet, regtest)",
				Value: "mainnet",
			},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			params, err := addrcodec.NetworkParams(c.String("network"))
			if err != nil {
				return err
			}

			var spend *addrcodec.Spend
			if c.IsSet("scriptsig") || c.IsSet("witness") {
				spend = &addrcodec.Spend{
					ScriptSigHex: c.String("scriptsig"),
					Witness:      c.StringSlice("witness"),
				}
			}

			addr, ok := addrcodec.New(params).Encode(c.String("type"), c.String("hex"), spend)

			result := decodeResult{
				Decoded:     ok,
				AddressType: addrcodec.AddressUnknown,
			}
			if ok {
				result.Address = addr.Text
				result.ScriptKind = addr.Kind
				result.AddressType = addrcodec.ClassifyAddressType(addr.Text)
			}

			enc := json.NewEncoder(c.Root().Writer)
			enc.SetIndent("", "  ")
			return enc.Encode(result)
		},
	}
}
