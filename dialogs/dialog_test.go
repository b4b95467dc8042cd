package dialogs

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestRecorder(t *testing.T) {
	r := &Recorder{}
	r.Alert("one")
	r.Alert("two")
	assert.Equal(t, []string{"one", "two"}, r.Messages())
}

func TestLogged(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	Logged{Logger: zap.New(core)}.Alert("too large")

	entries := logs.All()
	assert.Len(t, entries, 1)
	assert.Equal(t, "too large", entries[0].ContextMap()["message"])

	Logged{}.Alert("dropped")
}
