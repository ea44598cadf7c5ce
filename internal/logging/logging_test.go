package logging

import (
	"bytes"
	"encoding/json"
	"os"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetup_JSON(t *testing.T) {
	t.Cleanup(func() {
		logrus.SetOutput(os.Stderr)
		logrus.SetFormatter(&logrus.TextFormatter{})
		logrus.SetLevel(logrus.InfoLevel)
	})

	var buf bytes.Buffer
	require.NoError(t, Setup(&buf, "debug", "json"))

	logrus.WithField("user_id", 3).Debug("record saved")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "record saved", entry["msg"])
	assert.Equal(t, "debug", entry["level"])
	assert.EqualValues(t, 3, entry["user_id"])
}

func TestSetup_Invalid(t *testing.T) {
	var buf bytes.Buffer
	assert.Error(t, Setup(&buf, "loud", "text"))
	assert.Error(t, Setup(&buf, "info", "xml"))
}
