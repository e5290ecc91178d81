package sftpmount

import (
	"reflect"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestDecodeIDComponentSentinels(t *testing.T) {
	v, err := decodeIDComponent("no_id_info")
	require.NoError(t, err)
	require.Equal(t, NoIDInfo, v)

	v, err = decodeIDComponent("DEFAULT_ID")
	require.NoError(t, err)
	require.Equal(t, DefaultID, v)

	_, err = decodeIDComponent("garbage")
	require.Error(t, err)
}

func TestDecodeIDComponentNumeric(t *testing.T) {
	v, err := decodeIDComponent(float64(1000))
	require.NoError(t, err)
	require.Equal(t, 1000, v)

	v, err = decodeIDComponent(int64(2000))
	require.NoError(t, err)
	require.Equal(t, 2000, v)

	v, err = decodeIDComponent(3.5)
	require.NoError(t, err) // truncates like any other float64, no special-casing
	require.Equal(t, 3, v)
}

func TestIDPairDecodeHookBuildsPair(t *testing.T) {
	out, err := idPairDecodeHook(reflect.TypeOf([]interface{}{}), reflect.TypeOf(IDPair{}), []interface{}{float64(1000), "DEFAULT_ID"})
	require.NoError(t, err)
	require.Equal(t, IDPair{HostID: 1000, RemoteID: DefaultID}, out)
}

func TestIDPairDecodeHookIgnoresUnrelatedTargets(t *testing.T) {
	out, err := idPairDecodeHook(reflect.TypeOf(""), reflect.TypeOf(""), "unrelated")
	require.NoError(t, err)
	require.Equal(t, "unrelated", out)
}

func TestIDPairDecodeHookRejectsWrongShape(t *testing.T) {
	_, err := idPairDecodeHook(reflect.TypeOf([]interface{}{}), reflect.TypeOf(IDPair{}), []interface{}{1000})
	require.Error(t, err)
}

func TestConfigValidationRejectsRelativePaths(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Source = "srv/share"
	cfg.Target = "/mnt/remote"
	cfg.HelperExecLine = "sftp-helper"

	err := validate.Struct(&cfg)
	require.Error(t, err)
}

func TestConfigValidationAcceptsAbsolutePaths(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Source = "/srv/share"
	cfg.Target = "/mnt/remote"
	cfg.HelperExecLine = "sftp-helper"

	require.NoError(t, validate.Struct(&cfg))
}

func TestHelperCommandRendersQuotedSourceAndTarget(t *testing.T) {
	cfg := &Config{
		Source:         `/srv/sha"re`,
		Target:         "/mnt/remote",
		HelperExecLine: "sftp-helper",
	}

	require.Equal(t, `sudo sftp-helper :"/srv/sha\"re" "/mnt/remote"`, cfg.helperCommand())
}

func TestDefaultConfigHelperProbeMatchesSpecFigure(t *testing.T) {
	cfg := DefaultConfig()
	require.Equal(t, 250*time.Millisecond, cfg.Recovery.HelperProbe)
}
