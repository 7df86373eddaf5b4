package stack

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const validArn = "arn:aws:cognito-idp:us-east-1:123456789012:userpool/us-east-1_TestPool123"

func writeConfig(t *testing.T, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, ConfigFilename)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadConfigDefaults(t *testing.T) {
	path := writeConfig(t, t.TempDir(), "userPoolArn: "+validArn+"\n")

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, validArn, cfg.UserPoolArn)
	assert.Equal(t, "master", cfg.Branch)
	assert.Equal(t, "request_unicorn", cfg.FunctionCodeDir)
	assert.Equal(t, "cdk.out", cfg.Outdir)
	assert.Empty(t, cfg.Account)
	assert.Empty(t, cfg.Region)
}

func TestLoadConfigOverrides(t *testing.T) {
	path := writeConfig(t, t.TempDir(), `userPoolArn: `+validArn+`
account: "123456789012"
region: eu-west-1
branch: main
functionCodeDir: dist/handler
`)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "123456789012", cfg.Account)
	assert.Equal(t, "eu-west-1", cfg.Region)
	assert.Equal(t, "main", cfg.Branch)
	assert.Equal(t, "dist/handler", cfg.FunctionCodeDir)
}

func TestLoadConfigRequiresUserPoolArn(t *testing.T) {
	path := writeConfig(t, t.TempDir(), "branch: master\n")

	_, err := LoadConfig(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "userPoolArn is required")
}

func TestValidateRejectsMalformedArn(t *testing.T) {
	for _, arn := range []string{
		"userpool/us-east-1_TestPool123",
		"arn:aws:iam::123456789012:role/not-a-pool",
		"arn:aws:cognito-idp:us-east-1:<ACCOUNT_ID>:userpool/<USER_POOL_ID>",
	} {
		cfg := Config{UserPoolArn: arn}
		err := cfg.Validate()
		require.Error(t, err, "arn %q should be rejected", arn)
		assert.Contains(t, err.Error(), "not a Cognito user pool ARN")
	}
}

func TestValidateAccountRegionTogether(t *testing.T) {
	cfg := Config{UserPoolArn: validArn, Account: "123456789012"}
	require.Error(t, cfg.Validate())

	cfg = Config{UserPoolArn: validArn, Region: "us-east-1"}
	require.Error(t, cfg.Validate())

	cfg = Config{UserPoolArn: validArn, Account: "123456789012", Region: "us-east-1"}
	require.NoError(t, cfg.Validate())
}

func TestLoadConfigWalksUp(t *testing.T) {
	root := t.TempDir()
	writeConfig(t, root, "userPoolArn: "+validArn+"\n")

	nested := filepath.Join(root, "a", "b")
	require.NoError(t, os.MkdirAll(nested, 0o755))
	t.Chdir(nested)

	cfg, err := LoadConfig("")
	require.NoError(t, err)
	assert.Equal(t, validArn, cfg.UserPoolArn)
}

func TestLoadConfigMissingFile(t *testing.T) {
	t.Chdir(t.TempDir())

	_, err := LoadConfig("")
	require.Error(t, err)
	assert.Contains(t, err.Error(), ConfigFilename)
}
