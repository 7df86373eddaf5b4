package main

import (
	"context"
	"flag"
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	ddbtypes "github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/aws/aws-sdk-go-v2/service/iam"
	"github.com/aws/aws-sdk-go-v2/service/sts"

	"github.com/wildrydes/wild-rydes-cdk/stack"
)

// doctorCheck is one read-only probe of the deployed account.
type doctorCheck struct {
	name string
	run  func(context.Context) error
}

func runDoctor() error {
	fs := flag.NewFlagSet("doctor", flag.ExitOnError)

	var (
		configPath = fs.String("config", "", "path to wildrydes.yaml (default: walk up from the working directory)")
		timeout    = fs.Duration("timeout", 30*time.Second, "total time budget for the checks")
	)

	fs.Usage = func() {
		fmt.Println(`wildrydes doctor - Verify the deployed resources against the stack definition

Usage:
  wildrydes doctor [flags]

Flags:`)
		fs.PrintDefaults()
		fmt.Println(`
Doctor is read-only. It uses the default AWS credential chain and checks that
the caller identity, the Rides table, and the two IAM roles match what the
stack declares.`)
	}

	if err := fs.Parse(os.Args[1:]); err != nil {
		return err
	}

	cfg, err := stack.LoadConfig(*configPath)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx)
	if err != nil {
		return fmt.Errorf("loading AWS credentials: %w", err)
	}
	if cfg.Region != "" {
		awsCfg.Region = cfg.Region
	}

	iamClient := iam.NewFromConfig(awsCfg)
	checks := []doctorCheck{
		{name: "caller identity", run: checkCallerIdentity(sts.NewFromConfig(awsCfg), cfg)},
		{name: "Rides table", run: checkRidesTable(dynamodb.NewFromConfig(awsCfg))},
		{name: "Amplify role", run: checkRole(iamClient, stack.AmplifyRoleName, "amplify.amazonaws.com")},
		{name: "Lambda role", run: checkRole(iamClient, stack.LambdaRoleName, "lambda.amazonaws.com")},
	}

	failed := 0
	for _, c := range checks {
		if err := c.run(ctx); err != nil {
			failed++
			fmt.Fprintf(os.Stderr, "FAIL %-16s %v\n", c.name, err)
			continue
		}
		fmt.Printf("ok   %s\n", c.name)
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d checks failed", failed, len(checks))
	}
	return nil
}

func checkCallerIdentity(client *sts.Client, cfg stack.Config) func(context.Context) error {
	return func(ctx context.Context) error {
		out, err := client.GetCallerIdentity(ctx, &sts.GetCallerIdentityInput{})
		if err != nil {
			return err
		}
		if cfg.Account != "" && aws.ToString(out.Account) != cfg.Account {
			return fmt.Errorf("credentials are for account %s, config pins %s", aws.ToString(out.Account), cfg.Account)
		}
		return nil
	}
}

func checkRidesTable(client *dynamodb.Client) func(context.Context) error {
	return func(ctx context.Context) error {
		out, err := client.DescribeTable(ctx, &dynamodb.DescribeTableInput{
			TableName: aws.String(stack.TableName),
		})
		if err != nil {
			return err
		}
		table := out.Table
		if table.TableStatus != ddbtypes.TableStatusActive {
			return fmt.Errorf("table status is %s, want ACTIVE", table.TableStatus)
		}
		if len(table.KeySchema) != 1 ||
			aws.ToString(table.KeySchema[0].AttributeName) != "RideId" ||
			table.KeySchema[0].KeyType != ddbtypes.KeyTypeHash {
			return fmt.Errorf("key schema is not a single RideId partition key")
		}
		for _, def := range table.AttributeDefinitions {
			if aws.ToString(def.AttributeName) == "RideId" && def.AttributeType != ddbtypes.ScalarAttributeTypeS {
				return fmt.Errorf("RideId attribute type is %s, want S", def.AttributeType)
			}
		}
		return nil
	}
}

func checkRole(client *iam.Client, roleName, principal string) func(context.Context) error {
	return func(ctx context.Context) error {
		out, err := client.GetRole(ctx, &iam.GetRoleInput{RoleName: aws.String(roleName)})
		if err != nil {
			return err
		}
		// The trust policy comes back URL-encoded JSON; a substring check is
		// enough to confirm the trusted service principal.
		doc, err := url.QueryUnescape(aws.ToString(out.Role.AssumeRolePolicyDocument))
		if err != nil {
			return fmt.Errorf("decoding trust policy: %w", err)
		}
		if !strings.Contains(doc, principal) {
			return fmt.Errorf("role %s is not trusted by %s", roleName, principal)
		}
		return nil
	}
}
