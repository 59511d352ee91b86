package codec

import (
	"fmt"
	"sort"
	"sync"

	eng "github.com/reoring/hal/internal/engine"
	gojsonsrc "github.com/reoring/hal/source/gojson"
	jsonsrc "github.com/reoring/hal/source/json"
)

// Driver names accepted by JSONOptions.Driver.
const (
	DriverGoJSON  = "go-json"
	DriverStdlib  = "encoding/json"
	DefaultDriver = DriverGoJSON
)

// jsonDriver is the text primitive behind the JSON codec: a token source for
// parsing and a scalar encoder for rendering.
type jsonDriver interface {
	NewBytes(b []byte) eng.TokenSource
	Marshal(v any) ([]byte, error)
	Name() string
}

type goJSONDriver struct{}

func (goJSONDriver) NewBytes(b []byte) eng.TokenSource { return gojsonsrc.NewBytes(b) }
func (goJSONDriver) Marshal(v any) ([]byte, error)     { return gojsonsrc.Marshal(v) }
func (goJSONDriver) Name() string                      { return DriverGoJSON }

type stdlibDriver struct{}

func (stdlibDriver) NewBytes(b []byte) eng.TokenSource { return jsonsrc.NewBytes(b) }
func (stdlibDriver) Marshal(v any) ([]byte, error)     { return jsonsrc.Marshal(v) }
func (stdlibDriver) Name() string                      { return DriverStdlib }

var (
	driversMu sync.RWMutex
	drivers   = map[string]jsonDriver{
		DriverGoJSON: goJSONDriver{},
		DriverStdlib: stdlibDriver{},
	}
)

func lookupDriver(name string) (jsonDriver, error) {
	if name == "" {
		name = DefaultDriver
	}
	driversMu.RLock()
	d, ok := drivers[name]
	driversMu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("codec: unknown JSON driver %q (known: %v)", name, Drivers())
	}
	return d, nil
}

// Drivers lists the registered JSON driver names.
func Drivers() []string {
	driversMu.RLock()
	defer driversMu.RUnlock()
	names := make([]string, 0, len(drivers))
	for name := range drivers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
