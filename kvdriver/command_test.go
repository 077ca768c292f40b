package kvdriver_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/AntonStoeckl/keyvalue-driver-go/kvdriver"
)

func Test_Command_SetKeyPrefix_PrefixesEveryKey(t *testing.T) {
	cmd := kvdriver.NewCommand(kvdriver.CmdDel, []string{"one", "two"})

	cmd.SetKeyPrefix("app:")

	assert.Equal(t, []string{"app:one", "app:two"}, cmd.Keys())
	assert.Equal(t, "app:one", cmd.Key())
}

func Test_Command_SetKeyPrefix_IsIdempotent(t *testing.T) {
	cmd := kvdriver.NewCommand(kvdriver.CmdGet, []string{"one"})

	cmd.SetKeyPrefix("app:")
	cmd.SetKeyPrefix("app:")

	assert.Equal(t, []string{"app:one"}, cmd.Keys())
}

func Test_Command_SetKeyPrefix_EmptyPrefixIsANoOp(t *testing.T) {
	cmd := kvdriver.NewCommand(kvdriver.CmdGet, []string{"one"})

	cmd.SetKeyPrefix("")

	assert.Equal(t, []string{"one"}, cmd.Keys())
}

func Test_Command_Key_IsEmptyForKeyLessCommands(t *testing.T) {
	cmd := kvdriver.NewCommand(kvdriver.CmdPing, nil)

	assert.Equal(t, "", cmd.Key())
}

func Test_Command_String_RendersNameKeysAndArgs(t *testing.T) {
	cmd := kvdriver.NewCommand(kvdriver.CmdSet, []string{"greeting"}, []byte("hello"))

	assert.Equal(t, "SET greeting hello", cmd.String())
}

func Test_Command_String_TruncatesLongArguments(t *testing.T) {
	longArg := []byte(strings.Repeat("x", 100))
	cmd := kvdriver.NewCommand(kvdriver.CmdSet, []string{"big"}, longArg)

	rendered := cmd.String()

	assert.Equal(t, "SET big "+strings.Repeat("x", 32)+"...", rendered)
}

func Test_Command_Host_IsEmptyUntilRouted(t *testing.T) {
	cmd := kvdriver.NewCommand(kvdriver.CmdGet, []string{"one"})

	assert.Equal(t, "", cmd.Host())

	cmd.SetHost("db-1:5432")

	assert.Equal(t, "db-1:5432", cmd.Host())
}
