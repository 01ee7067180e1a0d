// SPDX-License-Identifier: GPL-2.0-or-later

// qmap reads Quake .map files, flattens them into id addressed tables and
// optionally exports the result.
package main

import (
	"flag"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"qmap/commandline"
	"qmap/config"
	"qmap/conlog"
	"qmap/export"
	"qmap/filesystem"
	"qmap/geomap"
	"qmap/mapfile"
	"qmap/wad"
)

func main() {
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "usage: %s [flags] maps/name.map ...\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()
	if flag.NArg() == 0 {
		flag.Usage()
		os.Exit(2)
	}
	if err := run(flag.Args()); err != nil {
		fmt.Fprintf(os.Stderr, "qmap: %v\n", err)
		os.Exit(1)
	}
}

func run(names []string) error {
	cfg, err := config.Load(commandline.ConfigPath())
	if err != nil {
		return err
	}
	commandline.Apply(cfg)

	conlog.Init(cfg.Logging.Level, cfg.Logging.LogFile)
	defer conlog.Sync()

	c := converter{cfg: cfg}
	if cfg.Export.Output != "" {
		if c.format, err = export.ParseFormat(cfg.Export.Format); err != nil {
			return err
		}
	}
	if cfg.Diagnostics.PointEntities {
		_, c.maxPointEntities = commandline.PointEntities()
	}
	c.files.UseGameDir(cfg.Data.BaseDir, cfg.Data.Game)
	defer c.files.Close()
	conlog.Debugf("search path %v", c.files.String())

	for _, name := range names {
		if err := c.convert(name); err != nil {
			return err
		}
	}
	return nil
}

type converter struct {
	cfg              *config.Config
	format           export.Format
	maxPointEntities int
	files            filesystem.SearchPath
}

// readMap looks name up in the game directories first and falls back to a
// plain path.
func (c *converter) readMap(name string) ([]byte, error) {
	b, err := c.files.ReadFile(name)
	if err == nil {
		return b, nil
	}
	if !errors.Is(err, fs.ErrNotExist) {
		return nil, err
	}
	return os.ReadFile(name)
}

func (c *converter) convert(name string) error {
	b, err := c.readMap(name)
	if err != nil {
		return err
	}
	m, err := mapfile.Parse(string(b))
	if err != nil {
		return errors.Wrap(err, name)
	}

	var opts []geomap.Option
	if c.cfg.Diagnostics.PointEntities {
		obs := geomap.LogPointEntities(conlog.Sugar().With("map", name))
		opts = append(opts, geomap.WithPointEntityObserver(limit(obs, c.maxPointEntities)))
	}
	g := geomap.New(m, opts...)

	st := g.Stats()
	conlog.Logger().Info("converted map",
		zap.String("map", name),
		zap.Int("entities", st.Entities),
		zap.Int("point_entities", st.PointEntities),
		zap.Int("brushes", st.Brushes),
		zap.Int("faces", st.Faces),
		zap.Int("textures", st.Textures))

	sizes := c.textureSizes(name, g)

	if c.cfg.Export.Output == "" {
		return nil
	}
	return c.export(name, g, sizes)
}

// textureSizes looks the textures of g up in the wads named by the
// worldspawn "wad" key. Missing wads and textures are only reported.
func (c *converter) textureSizes(name string, g *geomap.GeoMap) map[string][2]int {
	worlds := g.EntitiesByClassname("worldspawn")
	if len(worlds) == 0 {
		return nil
	}
	props, _ := g.EntityProperties(worlds[0])
	value, ok := props.Get("wad")
	if !ok {
		return nil
	}
	var wads []*wad.Wad
	for _, p := range wad.Paths(value) {
		b, err := c.files.ReadFile(p)
		if err != nil {
			conlog.Logger().Warn("missing wad", zap.String("map", name), zap.String("wad", p), zap.Error(err))
			continue
		}
		w, err := wad.Parse(b)
		if err != nil {
			conlog.Logger().Warn("bad wad", zap.String("map", name), zap.String("wad", p), zap.Error(err))
			continue
		}
		conlog.Debugf("%s: %d textures", p, w.Len())
		wads = append(wads, w)
	}
	if len(wads) == 0 {
		return nil
	}
	sizes := make(map[string][2]int)
	var missing []string
Textures:
	for _, t := range g.Textures() {
		for _, w := range wads {
			if mt, ok := w.MipTex(t); ok {
				sizes[t] = [2]int{mt.Width, mt.Height}
				continue Textures
			}
		}
		missing = append(missing, t)
	}
	if len(missing) > 0 {
		conlog.Logger().Warn("textures not found in wads", zap.String("map", name), zap.Strings("textures", missing))
	}
	return sizes
}

func (c *converter) export(name string, g *geomap.GeoMap, sizes map[string][2]int) error {
	meta, err := export.NewMeta(name)
	if err != nil {
		return err
	}
	meta.TextureSizes = sizes
	if err := os.MkdirAll(c.cfg.Export.Output, 0755); err != nil {
		return errors.Wrap(err, "export directory")
	}
	out := filepath.Join(c.cfg.Export.Output, filepath.Base(filesystem.StripExt(name))+c.format.Ext())
	f, err := os.Create(out)
	if err != nil {
		return errors.Wrap(err, "export")
	}
	if err := export.Write(f, g, meta, c.format); err != nil {
		f.Close()
		return errors.Wrap(err, out)
	}
	if err := f.Close(); err != nil {
		return errors.Wrap(err, out)
	}
	conlog.Logger().Info("exported map", zap.String("file", out), zap.Stringer("id", meta.ID))
	return nil
}

// limit stops passing entities to f after maxCalls calls, 0 is unlimited.
func limit(f geomap.PointEntityFunc, maxCalls int) geomap.PointEntityFunc {
	if maxCalls <= 0 {
		return f
	}
	var n int
	return func(id geomap.EntityID, props mapfile.Properties) {
		if n < maxCalls {
			f(id, props)
		}
		n++
	}
}
