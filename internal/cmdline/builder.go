// Package cmdline builds the Nextflow command line and environment from a
// parameter schema and resolved values.
package cmdline

import (
	"fmt"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/me/createtaxdb/pkg/model"
)

// Environment variables set for the runner process.
const (
	EnvHome               = "NXF_HOME"
	EnvOpts               = "NXF_OPTS"
	EnvStorageClaim       = "K8S_STORAGE_CLAIM_NAME"
	EnvDisableCheckLatest = "NXF_DISABLE_CHECK_LATEST"
)

// RunnerConfig holds the fixed parts of the runner invocation.
type RunnerConfig struct {
	Executable         string // runner binary
	Entry              string // pipeline entry, relative to the staged directory
	Profile            string // -profile selector
	ConfigFile         string // -c config reference
	Home               string // NXF_HOME
	Opts               string // NXF_OPTS (JVM memory and parallelism tuning)
	DisableCheckLatest bool   // NXF_DISABLE_CHECK_LATEST
}

// DefaultRunnerConfig returns the invocation used on the platform.
func DefaultRunnerConfig() RunnerConfig {
	return RunnerConfig{
		Executable:         "/root/nextflow",
		Entry:              "main.nf",
		Profile:            "docker",
		ConfigFile:         "latch.config",
		Home:               "/root/.nextflow",
		Opts:               "-Xms2048M -Xmx8G -XX:ActiveProcessorCount=4",
		DisableCheckLatest: true,
	}
}

// Builder translates resolved parameter values into runner invocations.
type Builder struct {
	schema *model.Schema
	runner RunnerConfig
}

// NewBuilder creates a Builder for schema s.
func NewBuilder(s *model.Schema, runner RunnerConfig) *Builder {
	return &Builder{schema: s, runner: runner}
}

// Invocation is a fully constructed runner call.
type Invocation struct {
	// Argv is the runner executable followed by its arguments.
	Argv []string

	// Env holds the variables overriding the parent environment.
	Env map[string]string

	// Dir is the working directory of the process.
	Dir string
}

// Flags translates values into parameter flags in schema order.
//
// A parameter without a value falls back to its default; with neither it is
// omitted. Booleans follow the parameter's BoolFlag style.
func (b *Builder) Flags(values model.Values) ([]string, error) {
	var flags []string
	for _, p := range b.schema.Params() {
		v := values.Resolve(p)
		if !v.Set {
			continue
		}
		if v.Kind != "" && v.Kind != p.Type.Kind {
			return nil, fmt.Errorf("param %q: value kind %q does not match declared %q", p.Name, v.Kind, p.Type.Kind)
		}
		flag := "--" + p.Name

		if p.Type.Kind == model.KindBool {
			switch p.BoolFlag {
			case model.BoolExplicit:
				flags = append(flags, flag, strconv.FormatBool(v.Bool))
			default:
				if v.Bool {
					flags = append(flags, flag)
				}
			}
			continue
		}
		flags = append(flags, flag, v.Str)
	}
	return flags, nil
}

// Build constructs the invocation for a run staged at stagedDir using the
// shared volume named volume.
func (b *Builder) Build(stagedDir, volume string, values model.Values) (*Invocation, error) {
	flags, err := b.Flags(values)
	if err != nil {
		return nil, err
	}

	argv := []string{
		b.runner.Executable,
		"run",
		filepath.Join(stagedDir, b.runner.Entry),
		"-work-dir",
		stagedDir,
		"-profile",
		b.runner.Profile,
		"-c",
		b.runner.ConfigFile,
	}
	argv = append(argv, flags...)

	return &Invocation{
		Argv: argv,
		Env: map[string]string{
			EnvHome:               b.runner.Home,
			EnvOpts:               b.runner.Opts,
			EnvStorageClaim:       volume,
			EnvDisableCheckLatest: strconv.FormatBool(b.runner.DisableCheckLatest),
		},
		Dir: stagedDir,
	}, nil
}

// Environ merges the overrides onto parent (in os.Environ form).
// Each key appears once; overrides win. Output is sorted by key.
func (inv *Invocation) Environ(parent []string) []string {
	merged := make(map[string]string, len(parent)+len(inv.Env))
	for _, kv := range parent {
		k, v, ok := strings.Cut(kv, "=")
		if !ok {
			continue
		}
		merged[k] = v
	}
	for k, v := range inv.Env {
		merged[k] = v
	}

	keys := make([]string, 0, len(merged))
	for k := range merged {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	env := make([]string, 0, len(keys))
	for _, k := range keys {
		env = append(env, k+"="+merged[k])
	}
	return env
}

// String renders the command line for logs.
func (inv *Invocation) String() string {
	return strings.Join(inv.Argv, " ")
}
