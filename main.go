package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"

	"github.com/urfave/cli/v2"

	"github.com/tinyrange/glbind/internal/config"
	"github.com/tinyrange/glbind/internal/gen"
	"github.com/tinyrange/glbind/internal/registry"
)

var (
	namespaceFlag = &cli.StringFlag{
		Name:  "namespace",
		Usage: "Registry namespace to bind (gl|glx|wgl)",
		Value: "gl",
	}
	apiFlag = &cli.StringFlag{
		Name:  "api",
		Usage: "Registry api (gl, gles1, gles2, glsc2, glx, wgl); defaults to the namespace",
	}
	profileFlag = &cli.StringFlag{
		Name:  "profile",
		Usage: "Profile for desktop GL (core|compatibility)",
	}
	versionFlag = &cli.StringFlag{
		Name:  "version",
		Usage: "Highest feature version to include, e.g. 4.6",
	}
	extensionFlag = &cli.StringSliceFlag{
		Name:    "extension",
		Aliases: []string{"e"},
		Usage:   "Extension to include; may be repeated",
	}
	fullFlag = &cli.BoolFlag{
		Name:  "full",
		Usage: "Include every feature and every supported extension of the api",
	}
	generatorFlag = &cli.StringFlag{
		Name:  "generator",
		Usage: "Shape of the generated package (global|struct)",
	}
	packageFlag = &cli.StringFlag{
		Name:  "package",
		Usage: "Go package name of the generated file; defaults to the namespace",
	}
	outputFlag = &cli.StringFlag{
		Name:    "output",
		Aliases: []string{"o"},
		Usage:   "Write the generated file here instead of standard output",
	}
	configFlag = &cli.StringFlag{
		Name:  "config",
		Usage: "TOML preset; flags given on the command line take precedence",
	}
	verboseFlag = &cli.BoolFlag{
		Name:  "verbose",
		Usage: "Log debug output to standard error",
	}
)

var generateFlags = []cli.Flag{
	namespaceFlag,
	apiFlag,
	profileFlag,
	versionFlag,
	extensionFlag,
	fullFlag,
	generatorFlag,
	packageFlag,
	outputFlag,
	configFlag,
}

var extensionsCommand = &cli.Command{
	Name:      "extensions",
	Usage:     "List the extensions a registry supports for an api",
	ArgsUsage: "<registry.xml>",
	Flags:     []cli.Flag{namespaceFlag, apiFlag, profileFlag, configFlag, verboseFlag},
	Before:    setupLogging,
	Action:    listExtensions,
}

func newApp() *cli.App {
	return &cli.App{
		Name:      "glbind",
		Usage:     "Generate Go OpenGL bindings from a Khronos XML registry",
		ArgsUsage: "<registry.xml>",
		Flags:     append(generateFlags, verboseFlag),
		Commands:  []*cli.Command{extensionsCommand, watchCommand},
		Before:    setupLogging,
		Action:    generate,
	}
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := newApp().RunContext(ctx, os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func setupLogging(ctx *cli.Context) error {
	level := slog.LevelInfo
	if ctx.Bool(verboseFlag.Name) {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
	return nil
}

// loadConfig layers the command line over the optional preset and fills
// whatever is still unset from the namespace defaults.
func loadConfig(ctx *cli.Context) (*config.Config, error) {
	cfg := &config.Config{}
	if path := ctx.String(configFlag.Name); path != "" {
		var err error
		if cfg, err = config.Load(path); err != nil {
			return nil, err
		}
		slog.Debug("Loaded preset", "path", path)
	}

	if ctx.IsSet(namespaceFlag.Name) || cfg.Namespace == "" {
		cfg.Namespace = ctx.String(namespaceFlag.Name)
	}
	if ctx.IsSet(apiFlag.Name) {
		cfg.API = ctx.String(apiFlag.Name)
	}
	if ctx.IsSet(profileFlag.Name) {
		cfg.Profile = ctx.String(profileFlag.Name)
	}
	if ctx.IsSet(versionFlag.Name) {
		cfg.Version = ctx.String(versionFlag.Name)
	}
	if ctx.IsSet(extensionFlag.Name) {
		cfg.Extensions = ctx.StringSlice(extensionFlag.Name)
	}
	if ctx.IsSet(fullFlag.Name) {
		cfg.Full = ctx.Bool(fullFlag.Name)
	}
	if ctx.IsSet(generatorFlag.Name) {
		cfg.Generator = ctx.String(generatorFlag.Name)
	}
	if ctx.IsSet(packageFlag.Name) {
		cfg.Package = ctx.String(packageFlag.Name)
	}
	if ctx.IsSet(outputFlag.Name) {
		cfg.Output = ctx.String(outputFlag.Name)
	}
	if ctx.NArg() > 0 {
		cfg.Registry = ctx.Args().First()
	}
	if cfg.Registry == "" {
		return nil, errors.New("no registry file given")
	}
	if err := cfg.Complete(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func generate(ctx *cli.Context) error {
	cfg, err := loadConfig(ctx)
	if err != nil {
		return err
	}
	return emit(cfg)
}

// emit generates the bindings cfg describes and writes them to cfg.Output,
// or standard output when it is empty.
func emit(cfg *config.Config) error {
	filter, err := cfg.Filter()
	if err != nil {
		return err
	}
	opts, err := cfg.Options()
	if err != nil {
		return err
	}
	opts.Source = filepath.Base(cfg.Registry)

	doc, err := registry.ParseFile(cfg.Registry)
	if err != nil {
		return err
	}
	reg, err := doc.Select(filter)
	if err != nil {
		return fmt.Errorf("select %s: %w", filter, err)
	}
	slog.Debug("Selected symbols",
		"features", len(reg.Features),
		"extensions", len(reg.Extensions),
		"types", len(reg.Types),
		"enums", len(reg.Enums),
		"commands", len(reg.Cmds))

	var buf bytes.Buffer
	if err := gen.Generate(&buf, reg, opts); err != nil {
		return err
	}

	if cfg.Output == "" {
		_, err := os.Stdout.Write(buf.Bytes())
		return err
	}
	if err := os.WriteFile(cfg.Output, buf.Bytes(), 0644); err != nil {
		return fmt.Errorf("write %s: %w", cfg.Output, err)
	}
	slog.Info("Generated bindings", "output", cfg.Output, "package", opts.Package, "commands", len(reg.Cmds))
	return nil
}

func listExtensions(ctx *cli.Context) error {
	cfg, err := loadConfig(ctx)
	if err != nil {
		return err
	}
	filter, err := cfg.Filter()
	if err != nil {
		return err
	}
	doc, err := registry.ParseFile(cfg.Registry)
	if err != nil {
		return err
	}
	for _, name := range doc.SupportedExtensions(filter.API, filter.Profile) {
		fmt.Fprintln(ctx.App.Writer, name)
	}
	return nil
}
