package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"

	"github.com/chazu/shapes/vm"
)

// Runner executes object scripts against one VM. Every get/set line is its
// own property access site with its own inline cache.
type Runner struct {
	vm        *vm.VM
	objects   map[string]*vm.Object
	caches    *vm.PropertyCacheTable
	inspector *vm.Inspector
	out       io.Writer
}

// NewRunner creates a runner writing results to out.
func NewRunner(v *vm.VM, out io.Writer) *Runner {
	return &Runner{
		vm:        v,
		objects:   make(map[string]*vm.Object),
		caches:    vm.NewPropertyCacheTable(),
		inspector: vm.NewInspector(v),
		out:       out,
	}
}

// Run executes every line of in, stopping at the first failing line.
func (r *Runner) Run(in io.Reader) error {
	scanner := bufio.NewScanner(in)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if err := r.Exec(lineNo, strings.Fields(line)); err != nil {
			return fmt.Errorf("line %d: %w", lineNo, err)
		}
	}
	return scanner.Err()
}

// Exec runs one command. site identifies the access site for caching.
func (r *Runner) Exec(site int, args []string) error {
	cmd, args := args[0], args[1:]
	switch cmd {
	case "new":
		if err := wantArgs(cmd, args, 1); err != nil {
			return err
		}
		obj, err := r.vm.NewObject()
		if err != nil {
			return err
		}
		r.objects[args[0]] = obj

	case "clone":
		if err := wantArgs(cmd, args, 2); err != nil {
			return err
		}
		src, err := r.object(args[1])
		if err != nil {
			return err
		}
		obj, err := r.vm.CloneObject(src)
		if err != nil {
			return err
		}
		r.objects[args[0]] = obj

	case "set":
		if err := wantArgs(cmd, args, 3); err != nil {
			return err
		}
		obj, err := r.object(args[0])
		if err != nil {
			return err
		}
		value, err := r.parseValue(args[2])
		if err != nil {
			return err
		}
		ic := r.caches.GetOrCreate(site, r.vm.Intern(args[1]))
		index, err := obj.SetCached(r.vm, ic, value)
		if err != nil {
			return err
		}
		fmt.Fprintf(r.out, "%s.%s = %s (slot %d)\n", args[0], args[1], r.inspector.FormatValue(value), index)

	case "get":
		if err := wantArgs(cmd, args, 2); err != nil {
			return err
		}
		obj, err := r.object(args[0])
		if err != nil {
			return err
		}
		ic := r.caches.GetOrCreate(site, r.vm.Intern(args[1]))
		if value, ok := obj.GetCached(ic); ok {
			fmt.Fprintf(r.out, "%s.%s = %s\n", args[0], args[1], r.inspector.FormatValue(value))
		} else {
			fmt.Fprintf(r.out, "%s.%s is absent\n", args[0], args[1])
		}

	case "shape":
		if err := wantArgs(cmd, args, 1); err != nil {
			return err
		}
		obj, err := r.object(args[0])
		if err != nil {
			return err
		}
		fmt.Fprintln(r.out, r.inspector.ShapeString(obj.Shape()))

	case "inspect":
		if err := wantArgs(cmd, args, 1); err != nil {
			return err
		}
		obj, err := r.object(args[0])
		if err != nil {
			return err
		}
		fmt.Fprint(r.out, vm.FormatInspection(r.inspector.Inspect(obj)))

	case "stats":
		if err := wantArgs(cmd, args, 0); err != nil {
			return err
		}
		r.PrintStats()

	default:
		return fmt.Errorf("unknown command %q", cmd)
	}
	return nil
}

// PrintStats writes heap, transition and cache counters.
func (r *Runner) PrintStats() {
	s := r.vm.Stats()
	c := r.caches.Stats()
	fmt.Fprintf(r.out, "heap: %s in %d objects, %d transition shapes, %d collections\n",
		humanize.Bytes(s.Heap.Bytes),
		s.Heap.CellCount(vm.ObjectCell),
		s.Heap.CellCount(vm.TransitionShapeCell),
		s.Heap.Collections)
	fmt.Fprintf(r.out, "transitions: %d created, %d shared\n", s.Transitions.Created, s.Transitions.Shared)
	fmt.Fprintf(r.out, "caches: %d sites, %.1f%% hits\n", c.Sites, c.HitRate)
}

func (r *Runner) object(name string) (*vm.Object, error) {
	obj, ok := r.objects[name]
	if !ok {
		return nil, fmt.Errorf("no object named %q", name)
	}
	return obj, nil
}

// parseValue reads an integer, float, true, false, nil or #symbol.
func (r *Runner) parseValue(s string) (vm.Value, error) {
	switch s {
	case "nil":
		return vm.Nil, nil
	case "true":
		return vm.True, nil
	case "false":
		return vm.False, nil
	}
	if name, ok := strings.CutPrefix(s, "#"); ok && name != "" {
		return vm.FromSymbol(r.vm.Intern(name)), nil
	}
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		v, ok := vm.TryFromSmallInt(n)
		if !ok {
			return 0, fmt.Errorf("integer %s out of range", s)
		}
		return v, nil
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return vm.FromFloat64(f), nil
	}
	return 0, fmt.Errorf("cannot parse value %q", s)
}

var errArgs = errors.New("wrong number of arguments")

func wantArgs(cmd string, args []string, n int) error {
	if len(args) != n {
		return fmt.Errorf("%s: %w (got %d, want %d)", cmd, errArgs, len(args), n)
	}
	return nil
}
