package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/aws/jsii-runtime-go"

	"github.com/wildrydes/wild-rydes-cdk/stack"
)

func runSynth() error {
	fs := flag.NewFlagSet("synth", flag.ExitOnError)

	var (
		configPath = fs.String("config", "", "path to wildrydes.yaml (default: walk up from the working directory)")
		outdir     = fs.String("outdir", "", "cloud assembly output directory (default: from config, then cdk.out)")
	)

	fs.Usage = func() {
		fmt.Println(`wildrydes synth - Synthesize the CloudFormation cloud assembly

Usage:
  wildrydes synth [flags]

Flags:`)
		fs.PrintDefaults()
		fmt.Println(`
The CDK toolkit runs this command through cdk.json, in which case the toolkit
chooses the output directory via CDK_OUTDIR.`)
	}

	if err := fs.Parse(os.Args[1:]); err != nil {
		return err
	}

	cfg, err := stack.LoadConfig(*configPath)
	if err != nil {
		return err
	}

	defer jsii.Close()

	app := stack.NewApp(cfg, *outdir)
	assembly := app.Synth(nil)
	fmt.Printf("wrote cloud assembly to %s\n", *assembly.Directory())
	return nil
}
