// wildrydes is the CLI for the Wild Rydes workshop infrastructure.
//
// # Commands
//
//	wildrydes synth    Synthesize the CloudFormation cloud assembly
//	wildrydes doctor   Verify the deployed resources against the stack definition
//
// # Quick Start
//
// Create the user pool with the Amplify CLI, then record its ARN in a
// wildrydes.yaml next to the repository root:
//
//	userPoolArn: arn:aws:cognito-idp:us-east-1:123456789012:userpool/us-east-1_XXXXXXXXX
//
// Synthesize directly, or let the CDK toolkit drive it through cdk.json:
//
//	wildrydes synth
//	cdk deploy
//
// After deploying, confirm the account matches the definition:
//
//	wildrydes doctor
package main

import (
	"fmt"
	"os"
)

const version = "0.1.0"

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	cmd := os.Args[1]
	// Remove the subcommand from args so flag parsing works
	os.Args = append([]string{os.Args[0]}, os.Args[2:]...)

	var err error
	switch cmd {
	case "synth", "synthesize":
		err = runSynth()
	case "doctor", "verify":
		err = runDoctor()
	case "help", "-h", "--help":
		printUsage()
		return
	case "version", "-v", "--version":
		fmt.Printf("wildrydes version %s\n", version)
		return
	default:
		fmt.Fprintf(os.Stderr, "wildrydes: unknown command %q\n\n", cmd)
		printUsage()
		os.Exit(1)
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "wildrydes %s: %v\n", cmd, err)
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`wildrydes - Wild Rydes workshop infrastructure

Usage:
  wildrydes <command> [flags]

Commands:
  synth    Synthesize the CloudFormation cloud assembly
  doctor   Verify the deployed resources against the stack definition

Examples:
  # Synthesize into cdk.out:
  wildrydes synth

  # Synthesize somewhere else:
  wildrydes synth --outdir /tmp/assembly

  # Check a deployed account:
  wildrydes doctor

Configuration (required):
  Create wildrydes.yaml in the repository root:

    userPoolArn: arn:aws:cognito-idp:<region>:<account>:userpool/<pool-id>
    # account: "123456789012"   # pin the deployment environment
    # region: us-east-1
    # branch: master            # Amplify deployment branch
    # functionCodeDir: request_unicorn

Run 'wildrydes <command> --help' for more information on a command.`)
}
