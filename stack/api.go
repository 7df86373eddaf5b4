package stack

import (
	"github.com/aws/aws-cdk-go/awscdk/v2"
	"github.com/aws/aws-cdk-go/awscdk/v2/awsapigateway"
	"github.com/aws/aws-cdk-go/awscdk/v2/awslambda"
	"github.com/aws/jsii-runtime-go"
)

const corsOrigin = "'*'"

// newRideAPI wires the regional REST API: POST /ride proxied to the
// request-unicorn function behind the Cognito authorizer, and OPTIONS /ride
// answering CORS preflight from a mock integration with no backend call.
func newRideAPI(stack awscdk.Stack, handler awslambda.IFunction, cfg Config) awsapigateway.RestApi {
	api := awsapigateway.NewRestApi(stack, jsii.String("wild-rydes-apigw"), &awsapigateway.RestApiProps{
		RestApiName:   jsii.String("WildRydes"),
		EndpointTypes: &[]awsapigateway.EndpointType{awsapigateway.EndpointType_REGIONAL},
	})

	// Proxy mode: the handler sees the whole request and owns the response.
	integration := awsapigateway.NewLambdaIntegration(handler, &awsapigateway.LambdaIntegrationOptions{
		Proxy: jsii.Bool(true),
		IntegrationResponses: &[]*awsapigateway.IntegrationResponse{{
			StatusCode: jsii.String("200"),
			ResponseParameters: &map[string]*string{
				"method.response.header.Access-Control-Allow-Origin": jsii.String(corsOrigin),
			},
		}},
	})

	ride := api.Root().AddResource(jsii.String("ride"), nil)
	post := ride.AddMethod(jsii.String("POST"), integration, &awsapigateway.MethodOptions{
		MethodResponses: &[]*awsapigateway.MethodResponse{{
			StatusCode: jsii.String("200"),
			ResponseParameters: &map[string]*bool{
				"method.response.header.Access-Control-Allow-Origin": jsii.Bool(true),
			},
		}},
	})

	authorizer := awsapigateway.NewCfnAuthorizer(stack, jsii.String("wild-rydes-apigw-authorizer"), &awsapigateway.CfnAuthorizerProps{
		RestApiId:                    api.RestApiId(),
		Name:                         jsii.String("wild-rydes-apigw-authorizer"),
		Type:                         jsii.String("COGNITO_USER_POOLS"),
		IdentitySource:               jsii.String("method.request.header.Authorization"),
		IdentityValidationExpression: jsii.String("Bearer (.*)"),
		ProviderArns:                 jsii.Strings(cfg.UserPoolArn),
	})

	// MethodOptions cannot reference a CfnAuthorizer, so the authorization
	// settings go on the raw CfnMethod instead.
	// See https://github.com/aws/aws-cdk/issues/5618.
	cfnMethod := post.Node().DefaultChild().(awsapigateway.CfnMethod)
	cfnMethod.AddPropertyOverride(jsii.String("AuthorizationType"), jsii.String("COGNITO_USER_POOLS"))
	cfnMethod.AddPropertyOverride(jsii.String("AuthorizerId"), map[string]any{"Ref": authorizer.LogicalId()})

	ride.AddMethod(jsii.String("OPTIONS"), awsapigateway.NewMockIntegration(&awsapigateway.IntegrationOptions{
		IntegrationResponses: &[]*awsapigateway.IntegrationResponse{{
			StatusCode: jsii.String("200"),
			ResponseParameters: &map[string]*string{
				"method.response.header.Access-Control-Allow-Headers": jsii.String("'Content-Type,X-Amz-Date,Authorization,X-Api-Key,X-Amz-Security-Token'"),
				"method.response.header.Access-Control-Allow-Origin":  jsii.String(corsOrigin),
				"method.response.header.Access-Control-Allow-Methods": jsii.String("'POST,OPTIONS'"),
			},
		}},
		PassthroughBehavior: awsapigateway.PassthroughBehavior_WHEN_NO_MATCH,
		RequestTemplates: &map[string]*string{
			"application/json": jsii.String(`{"statusCode":200}`),
		},
	}), &awsapigateway.MethodOptions{
		MethodResponses: &[]*awsapigateway.MethodResponse{{
			StatusCode: jsii.String("200"),
			ResponseParameters: &map[string]*bool{
				"method.response.header.Access-Control-Allow-Headers": jsii.Bool(true),
				"method.response.header.Access-Control-Allow-Methods": jsii.Bool(true),
				"method.response.header.Access-Control-Allow-Origin":  jsii.Bool(true),
			},
		}},
	})

	return api
}
