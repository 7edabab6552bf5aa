package util

import (
	"strings"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWrapString(t *testing.T) {
	text := strings.Repeat("word ", 40)
	for _, line := range strings.Split(WrapString(text), "\n") {
		assert.LessOrEqual(t, len(line), Wrap)
	}
	assert.Equal(t, "short text", WrapString("  short   text "))
}

func TestGetClientConfig(t *testing.T) {
	viper.Reset()
	defer viper.Reset()

	viper.Set("transport-endpoints", "http://a:8080, b:8080,,")
	viper.Set("timeout", 7)
	viper.Set("transport-retries", 2)

	conf := GetClientConfig()
	assert.Equal(t, []string{"http://a:8080", "b:8080"}, conf.Endpoints)
	assert.Equal(t, 7, conf.TimeoutSecond)
	assert.Equal(t, 2, conf.RetryCount)
}

func TestGetSerializerAndTransport(t *testing.T) {
	viper.Reset()
	defer viper.Reset()

	for _, name := range []string{"json", "gob", "binary"} {
		viper.Set("serializer", name)
		s, err := GetSerializer()
		require.NoError(t, err)
		assert.NotNil(t, s)
	}
	viper.Set("serializer", "xml")
	_, err := GetSerializer()
	assert.Error(t, err)

	viper.Set("transport", "http")
	_, err = GetTransport()
	assert.NoError(t, err)
	_, err = GetServerTransport()
	assert.NoError(t, err)

	viper.Set("transport", "tcp")
	_, err = GetTransport()
	assert.Error(t, err)
}
