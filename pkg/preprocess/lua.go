// Package preprocess rewrites documents with a user supplied Lua script
// before they reach a model.
//
// A script defines a global function
//
//	function preprocess(text) return text end
//
// and may use the helpers in the textclf table: textclf.replace(text,
// pattern, repl) for Go regular expression substitution, textclf.lower(text)
// and textclf.log(message).
package preprocess

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	lua "github.com/yuin/gopher-lua"
	"github.com/yuin/gopher-lua/parse"
)

// EntryPoint is the global function every script must define
const EntryPoint = "preprocess"

// Script is a compiled preprocessing script bound to its own Lua VM
type Script struct {
	name string
	vm   *lua.LState
	fn   *lua.LFunction

	patterns map[string]*regexp.Regexp
}

// LoadFile compiles the script at path
func LoadFile(path string) (*Script, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read script: %w", err)
	}
	return Compile(filepath.Base(path), string(src))
}

// Compile parses src and runs its top level so EntryPoint is defined
func Compile(name, src string) (*Script, error) {
	chunk, err := parse.Parse(strings.NewReader(src), name)
	if err != nil {
		return nil, fmt.Errorf("failed to parse script %s: %w", name, err)
	}
	proto, err := lua.Compile(chunk, name)
	if err != nil {
		return nil, fmt.Errorf("failed to compile script %s: %w", name, err)
	}

	s := &Script{name: name, patterns: make(map[string]*regexp.Regexp)}
	s.vm = lua.NewState()
	s.registerAPI()

	s.vm.Push(s.vm.NewFunctionFromProto(proto))
	if err := s.vm.PCall(0, lua.MultRet, nil); err != nil {
		s.vm.Close()
		return nil, fmt.Errorf("failed to load script %s: %w", name, err)
	}

	fn, ok := s.vm.GetGlobal(EntryPoint).(*lua.LFunction)
	if !ok {
		s.vm.Close()
		return nil, fmt.Errorf("script %s does not define function %s(text)", name, EntryPoint)
	}
	s.fn = fn

	return s, nil
}

// Name returns the script's file name
func (s *Script) Name() string { return s.name }

// Apply runs the script on one document
func (s *Script) Apply(doc string) (string, error) {
	err := s.vm.CallByParam(lua.P{Fn: s.fn, NRet: 1, Protect: true}, lua.LString(doc))
	if err != nil {
		return "", fmt.Errorf("script %s failed: %w", s.name, err)
	}
	ret := s.vm.Get(-1)
	s.vm.Pop(1)

	str, ok := ret.(lua.LString)
	if !ok {
		return "", fmt.Errorf("script %s returned %s, expected string", s.name, ret.Type())
	}
	return string(str), nil
}

// ApplyAll runs the script on every document, returning a new slice
func (s *Script) ApplyAll(docs []string) ([]string, error) {
	out := make([]string, len(docs))
	for i, doc := range docs {
		text, err := s.Apply(doc)
		if err != nil {
			return nil, fmt.Errorf("document %d: %w", i, err)
		}
		out[i] = text
	}
	return out, nil
}

// Close releases the Lua VM
func (s *Script) Close() {
	s.vm.Close()
}

func (s *Script) registerAPI() {
	api := s.vm.NewTable()
	s.vm.SetGlobal("textclf", api)

	s.vm.SetField(api, "replace", s.vm.NewFunction(s.luaReplace))
	s.vm.SetField(api, "lower", s.vm.NewFunction(luaLower))
	s.vm.SetField(api, "log", s.vm.NewFunction(s.luaLog))
}

func (s *Script) luaReplace(vm *lua.LState) int {
	text := vm.CheckString(1)
	pattern := vm.CheckString(2)
	repl := vm.CheckString(3)

	re, ok := s.patterns[pattern]
	if !ok {
		var err error
		re, err = regexp.Compile(pattern)
		if err != nil {
			vm.ArgError(2, err.Error())
			return 0
		}
		s.patterns[pattern] = re
	}

	vm.Push(lua.LString(re.ReplaceAllString(text, repl)))
	return 1
}

func luaLower(vm *lua.LState) int {
	vm.Push(lua.LString(strings.ToLower(vm.CheckString(1))))
	return 1
}

func (s *Script) luaLog(vm *lua.LState) int {
	slog.Debug("preprocess: script log", "script", s.name, "message", vm.CheckString(1))
	return 0
}
