package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/nx-tools/ainb"
	"github.com/nx-tools/ainb/enumdb"
	"github.com/nx-tools/ainb/log"
)

var (
	game       string
	outputPath string
)

func prettyPrint(buf []byte) string {
	var out bytes.Buffer
	if err := json.Indent(&out, buf, "", "  "); err != nil {
		return string(buf)
	}
	return out.String()
}

func writeOutput(data []byte) error {
	if outputPath == "" {
		fmt.Println(string(data))
		return nil
	}
	return os.WriteFile(outputPath, data, 0644)
}

func runDump(cmd *cobra.Command, args []string) {
	logger := log.New()

	db, err := enumdb.Load(game)
	if err != nil {
		logger.Errorf("loading enum database for %q: %s", game, err)
		os.Exit(1)
	}

	a, err := ainb.New(args[0], &ainb.Options{Logger: logger, EnumDB: db})
	if err != nil {
		logger.Errorf("decoding %s: %s", args[0], err)
		os.Exit(1)
	}
	for _, w := range a.Warnings {
		logger.Warnf("%s", w.String())
	}

	out, err := a.MarshalJSON()
	if err != nil {
		logger.Errorf("marshaling %s: %s", args[0], err)
		os.Exit(1)
	}
	if err := writeOutput([]byte(prettyPrint(out))); err != nil {
		logger.Errorf("writing output: %s", err)
		os.Exit(1)
	}
}

func runEncode(cmd *cobra.Command, args []string) {
	logger := log.New()

	raw, err := os.ReadFile(args[0])
	if err != nil {
		logger.Errorf("reading %s: %s", args[0], err)
		os.Exit(1)
	}

	a := &ainb.AINB{}
	if err := a.UnmarshalJSON(raw); err != nil {
		logger.Errorf("parsing %s: %s", args[0], err)
		os.Exit(1)
	}

	data, err := ainb.Encode(a)
	if err != nil {
		logger.Errorf("encoding %s: %s", args[0], err)
		os.Exit(1)
	}
	if err := writeOutput(data); err != nil {
		logger.Errorf("writing output: %s", err)
		os.Exit(1)
	}
}

func main() {
	rootCmd := &cobra.Command{
		Use:   "ainbdump",
		Short: "A decoder and encoder for Nintendo Switch AI/logic graph containers",
		Long:  "ainbdump reads and writes .ainb node-graph files, converting between the binary container format and a structural JSON form",
	}

	dumpCmd := &cobra.Command{
		Use:   "dump [path]",
		Short: "Decode an .ainb file to JSON",
		Args:  cobra.ExactArgs(1),
		Run:   runDump,
	}
	dumpCmd.Flags().StringVar(&game, "game", "", "game name used to select the enum database (nss, s3, totk, smw)")
	dumpCmd.Flags().StringVar(&outputPath, "output_path", "", "write output here instead of stdout")

	encodeCmd := &cobra.Command{
		Use:   "encode [path]",
		Short: "Encode a structural JSON form back into an .ainb file",
		Args:  cobra.ExactArgs(1),
		Run:   runEncode,
	}
	encodeCmd.Flags().StringVar(&outputPath, "output_path", "", "write output here instead of stdout")

	versionCmd := &cobra.Command{
		Use:   "version",
		Short: "Print version number",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Println("ainbdump version 0.1.0")
		},
	}

	rootCmd.AddCommand(dumpCmd, encodeCmd, versionCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}
