// Package stack defines the Wild Rydes workshop infrastructure: two
// CodeCommit repositories, an Amplify-hosted static site with its IAM role,
// the Rides DynamoDB table, the request-unicorn Lambda function, and the REST
// API that fronts it. Construction is pure graph building; nothing talks to
// AWS until the synthesized assembly is deployed.
package stack

import (
	"os"

	"github.com/aws/aws-cdk-go/awscdk/v2"
	"github.com/aws/aws-cdk-go/awscdk/v2/awscodecommit"
	"github.com/aws/aws-cdk-go/awscdk/v2/awsdynamodb"
	"github.com/aws/aws-cdk-go/awscdk/v2/awsiam"
	"github.com/aws/aws-cdk-go/awscdk/v2/awslambda"
	amplify "github.com/aws/aws-cdk-go/awscdkamplifyalpha/v2"
	"github.com/aws/constructs-go/constructs/v10"
	"github.com/aws/jsii-runtime-go"
)

// TableName is fixed by the workshop: the Node.js handler participants deploy
// writes to a table with exactly this name.
const TableName = "Rides"

// Physical resource names, shared with the doctor command.
const (
	AmplifyRoleName = "amplify-wild-rydes-role"
	LambdaRoleName  = "wild-rydes-lambda-role"
	FunctionName    = "request-unicorn-wild-rydes"
)

// Props configures NewWildRydesStack.
type Props struct {
	awscdk.StackProps
	Config Config
}

// NewApp builds a CDK app containing the single Wild Rydes stack. outdir
// overrides cfg.Outdir when non-empty. When the CDK toolkit drives the app it
// passes its own output directory through CDK_OUTDIR, which wins.
func NewApp(cfg Config, outdir string) awscdk.App {
	if outdir == "" {
		outdir = cfg.Outdir
	}
	appProps := &awscdk.AppProps{}
	if os.Getenv("CDK_OUTDIR") == "" {
		appProps.Outdir = jsii.String(outdir)
	}
	app := awscdk.NewApp(appProps)

	props := &Props{Config: cfg}
	if cfg.Account != "" {
		props.Env = &awscdk.Environment{
			Account: jsii.String(cfg.Account),
			Region:  jsii.String(cfg.Region),
		}
	}
	NewWildRydesStack(app, "wild-rydes-cdk", props)
	return app
}

// NewWildRydesStack builds the full workshop stack. Resources are declared
// leaf-first so every cross-reference points at an already constructed node.
func NewWildRydesStack(scope constructs.Construct, id string, props *Props) awscdk.Stack {
	stack := awscdk.NewStack(scope, jsii.String(id), &props.StackProps)
	cfg := props.Config

	// Repo the Amplify static site deploys from.
	siteRepo := awscodecommit.NewRepository(stack, jsii.String("amplify-wild-rydes-repo"), &awscodecommit.RepositoryProps{
		RepositoryName: jsii.String("amplify-wild-rydes"),
		Description:    jsii.String("Repo for the Wild Rydes static site for Amplify"),
	})

	// Repo holding the code for this project.
	appRepo := awscodecommit.NewRepository(stack, jsii.String("app-serverless-workshop-repo"), &awscodecommit.RepositoryProps{
		RepositoryName: jsii.String("app-wild-rydes-serverless-workshop"),
		Description:    jsii.String("Repo for project from webapp.serverlessworkshops.io/staticwebhosting/overview/"),
	})

	amplifyRole := awsiam.NewRole(stack, jsii.String("amplify-wild-rydes-role"), &awsiam.RoleProps{
		RoleName:  jsii.String(AmplifyRoleName),
		AssumedBy: awsiam.NewServicePrincipal(jsii.String("amplify.amazonaws.com"), nil),
	})

	site := amplify.NewApp(stack, jsii.String("amplify-wild-rydes-site"), &amplify.AppProps{
		AppName:     jsii.String("wild-rydes-site"),
		Description: jsii.String("Wild Rydes Amplify Static Site"),
		Role:        amplifyRole,
		SourceCodeProvider: amplify.NewCodeCommitSourceCodeProvider(&amplify.CodeCommitSourceCodeProviderProps{
			Repository: siteRepo,
		}),
	})
	site.AddBranch(jsii.String(cfg.Branch), &amplify.BranchOptions{})

	// The policy is fairly open. The Amplify CLI drives backend setup
	// (Cognito and friends) through its own CloudFormation stacks, so the
	// role needs far more than GitPull.
	awsiam.NewPolicy(stack, jsii.String("amplify-wild-rydes-policy"), &awsiam.PolicyProps{
		Roles: &[]awsiam.IRole{amplifyRole},
		Statements: &[]awsiam.PolicyStatement{
			awsiam.NewPolicyStatement(&awsiam.PolicyStatementProps{
				Effect:    awsiam.Effect_ALLOW,
				Actions:   jsii.Strings("codecommit:GitPull"),
				Resources: &[]*string{siteRepo.RepositoryArn()},
			}),
			awsiam.NewPolicyStatement(&awsiam.PolicyStatementProps{
				Effect: awsiam.Effect_ALLOW,
				Actions: jsii.Strings(
					"amplify:GetApp",
					"amplify:CreateBackendEnvironment",
					"cloudformation:*",
					"cognito:*",
					"lambda:*",
					"s3:*",
					"iam:*",
				),
				Resources: jsii.Strings("*"),
			}),
		},
	})

	// Data is disposable in the workshop: the table goes with the stack.
	rides := awsdynamodb.NewTable(stack, jsii.String("Table"), &awsdynamodb.TableProps{
		TableName: jsii.String(TableName),
		PartitionKey: &awsdynamodb.Attribute{
			Name: jsii.String("RideId"),
			Type: awsdynamodb.AttributeType_STRING,
		},
		RemovalPolicy: awscdk.RemovalPolicy_DESTROY,
	})

	lambdaRole := awsiam.NewRole(stack, jsii.String("RequestUnicornRole"), &awsiam.RoleProps{
		RoleName:  jsii.String(LambdaRoleName),
		AssumedBy: awsiam.NewServicePrincipal(jsii.String("lambda.amazonaws.com"), nil),
		ManagedPolicies: &[]awsiam.IManagedPolicy{
			awsiam.ManagedPolicy_FromAwsManagedPolicyName(jsii.String("service-role/AWSLambdaBasicExecutionRole")),
		},
	})

	// The only principal with access to the table.
	rides.GrantWriteData(lambdaRole)

	requestUnicorn := awslambda.NewFunction(stack, jsii.String("request-unicorn"), &awslambda.FunctionProps{
		FunctionName: jsii.String(FunctionName),
		Handler:      jsii.String("requestUnicorn.handler"),
		Runtime:      awslambda.Runtime_NODEJS_12_X(),
		Code:         awslambda.Code_FromAsset(jsii.String(cfg.FunctionCodeDir), nil),
		Role:         lambdaRole,
	})

	api := newRideAPI(stack, requestUnicorn, cfg)

	awscdk.NewCfnOutput(stack, jsii.String("amplify-repo-url"), &awscdk.CfnOutputProps{
		Value: siteRepo.RepositoryCloneUrlHttp(),
	})
	awscdk.NewCfnOutput(stack, jsii.String("app-repo-url"), &awscdk.CfnOutputProps{
		Value: appRepo.RepositoryCloneUrlHttp(),
	})
	awscdk.NewCfnOutput(stack, jsii.String("amplify-default-domain"), &awscdk.CfnOutputProps{
		Value: site.DefaultDomain(),
	})
	awscdk.NewCfnOutput(stack, jsii.String("request-unicorn-apigw"), &awscdk.CfnOutputProps{
		Value: api.Url(),
	})

	return stack
}
