package hid

import "testing"

type nopLogger struct{}

func (nopLogger) Info(...interface{})           {}
func (nopLogger) Debug(...interface{})          {}
func (nopLogger) Error(...interface{})          {}
func (nopLogger) Warn(...interface{})           {}
func (nopLogger) Infof(string, ...interface{})  {}
func (nopLogger) Debugf(string, ...interface{}) {}
func (nopLogger) Errorf(string, ...interface{}) {}
func (nopLogger) Warnf(string, ...interface{})  {}

func (n nopLogger) ChildLogger(map[string]interface{}) Logger { return n }

func TestSetLogLevelMax(t *testing.T) {
	prev := GetLogger()
	defer SetLogger(prev)

	if err := SetLogLevelMax(); err != nil {
		t.Fatalf("default logger must accept the level: %s", err)
	}

	SetLogger(nopLogger{})
	if err := SetLogLevelMax(); err == nil {
		t.Fatal("expected an error for a non-default logger")
	}
}
