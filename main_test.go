// SPDX-License-Identifier: GPL-2.0-or-later

package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"qmap/config"
	"qmap/conlog"
	"qmap/export"
	"qmap/geomap"
	"qmap/mapfile"
	"qmap/pack"
	"qmap/wad"
)

const startMap = `{
"classname" "worldspawn"
"wad" "/quake/id1/gfx/base.wad"
{
( 0 0 16 ) ( 0 1 16 ) ( 1 0 16 ) ground 0 0 0 1 1
( 0 0 0 ) ( 1 0 0 ) ( 0 1 0 ) ground 0 0 0 1 1
}
}
{
"classname" "info_player_start"
}
{
"classname" "light"
}
`

func TestConvertFromPak(t *testing.T) {
	base := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(base, "id1"), 0755))
	var wb bytes.Buffer
	require.NoError(t, wad.Write(&wb, []wad.MipTex{{Name: "GROUND", Width: 64, Height: 32}}))
	f, err := os.Create(filepath.Join(base, "id1", "pak0.pak"))
	require.NoError(t, err)
	require.NoError(t, pack.Write(f, []pack.File{
		{Name: "maps/start.map", Data: []byte(startMap)},
		{Name: "gfx/base.wad", Data: wb.Bytes()},
	}))
	require.NoError(t, f.Close())

	core, logs := observer.New(zap.InfoLevel)
	conlog.SetLogger(zap.New(core))
	defer conlog.SetLogger(nil)

	cfg := config.Default()
	cfg.Data.BaseDir = base
	cfg.Export.Output = filepath.Join(base, "out")
	cfg.Diagnostics.PointEntities = true
	c := converter{cfg: cfg, format: export.JSON, maxPointEntities: 1}
	c.files.UseGameDir(cfg.Data.BaseDir, cfg.Data.Game)
	defer c.files.Close()

	require.NoError(t, c.convert("maps/start.map"))

	assert.Len(t, logs.FilterMessage("point entity").All(), 1)
	converted := logs.FilterMessage("converted map").All()
	require.Len(t, converted, 1)
	assert.Equal(t, int64(2), converted[0].ContextMap()["point_entities"])
	assert.Equal(t, int64(1), converted[0].ContextMap()["textures"])

	data, err := os.ReadFile(filepath.Join(base, "out", "start.json"))
	require.NoError(t, err)
	doc, err := export.Decode(data, export.JSON)
	require.NoError(t, err)
	assert.Equal(t, "maps/start.map", doc.AsMap()["source"])
	assert.Equal(t, map[string]interface{}{
		"ground": []interface{}{float64(64), float64(32)},
	}, doc.AsMap()["texture_sizes"])
	assert.Empty(t, logs.FilterMessage("textures not found in wads").All())
}

func TestConvertBadWads(t *testing.T) {
	base := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(base, "id1", "gfx"), 0755))
	// directory claims 0xffffffff entries but the file ends after the header
	corrupt := []byte("WAD2\xff\xff\xff\xff\x0c\x00\x00\x00")
	require.NoError(t, os.WriteFile(filepath.Join(base, "id1", "gfx", "base.wad"), corrupt, 0644))
	src := strings.Replace(startMap, "/quake/id1/gfx/base.wad", "gfx/base.wad;gfx/start.wad", 1)
	require.NoError(t, os.WriteFile(filepath.Join(base, "id1", "start.map"), []byte(src), 0644))

	core, logs := observer.New(zap.InfoLevel)
	conlog.SetLogger(zap.New(core))
	defer conlog.SetLogger(nil)

	cfg := config.Default()
	cfg.Data.BaseDir = base
	cfg.Export.Output = filepath.Join(base, "out")
	c := converter{cfg: cfg, format: export.YAML}
	c.files.UseGameDir(cfg.Data.BaseDir, cfg.Data.Game)
	defer c.files.Close()

	require.NoError(t, c.convert("start.map"))

	bad := logs.FilterMessage("bad wad").All()
	require.Len(t, bad, 1)
	assert.Equal(t, zap.WarnLevel, bad[0].Level)
	assert.Equal(t, "gfx/base.wad", bad[0].ContextMap()["wad"])
	missing := logs.FilterMessage("missing wad").All()
	require.Len(t, missing, 1)
	assert.Equal(t, "gfx/start.wad", missing[0].ContextMap()["wad"])

	data, err := os.ReadFile(filepath.Join(base, "out", "start.yaml"))
	require.NoError(t, err)
	doc, err := export.Decode(data, export.YAML)
	require.NoError(t, err)
	assert.NotContains(t, doc.AsMap(), "texture_sizes")
}

func TestConvertPlainPath(t *testing.T) {
	dir := t.TempDir()
	name := filepath.Join(dir, "test.map")
	require.NoError(t, os.WriteFile(name, []byte(startMap), 0644))

	c := converter{cfg: config.Default()}
	c.files.UseGameDir(dir, "")
	defer c.files.Close()
	require.NoError(t, c.convert(name))
	// no worldspawn, nothing to look up
	assert.Nil(t, c.textureSizes(name, geomap.New(mapfile.Map{})))

	_, err := os.Stat(filepath.Join(dir, "out"))
	assert.True(t, os.IsNotExist(err), "no export without an output directory")
}

func TestConvertErrors(t *testing.T) {
	dir := t.TempDir()
	bad := filepath.Join(dir, "bad.map")
	require.NoError(t, os.WriteFile(bad, []byte("{\n\"classname\"\n}"), 0644))

	c := converter{cfg: config.Default()}
	c.files.UseGameDir(dir, "")
	defer c.files.Close()

	assert.Error(t, c.convert(filepath.Join(dir, "missing.map")))
	err := c.convert(bad)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bad.map")
	assert.Contains(t, err.Error(), "line 3")
}

func TestLimit(t *testing.T) {
	var got []geomap.EntityID
	f := func(id geomap.EntityID, _ mapfile.Properties) { got = append(got, id) }
	l := limit(f, 2)
	for i := 0; i < 5; i++ {
		l(geomap.EntityID(i), nil)
	}
	assert.Equal(t, []geomap.EntityID{0, 1}, got)

	got = nil
	u := limit(f, 0)
	for i := 0; i < 3; i++ {
		u(geomap.EntityID(i), nil)
	}
	assert.Len(t, got, 3)
}
