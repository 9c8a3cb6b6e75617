package notifier

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"llama_lend/internal/modules/config"
	"llama_lend/internal/notify"
)

func TestNoTokenFallsBackToStdout(t *testing.T) {
	cfg := &config.Config{}
	bot, err := NewBot(cfg, zap.NewNop())
	require.NoError(t, err)
	assert.Nil(t, bot)

	n := NewNotifier(cfg, bot, zap.NewNop())
	assert.IsType(t, &notify.Stdout{}, n)
}
