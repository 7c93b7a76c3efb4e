package config

import (
	"context"
	"encoding/json"
	"errors"
	"maps"
	"slices"

	"ltimer-go/bus"
	"ltimer-go/types"
	"ltimer-go/x/logx"
)

const (
	serviceName  = "config"
	configPrefix = "config"
	CtxDeviceKey = "device" // context key used for device ID
)

// EmbeddedConfigLookup allows overriding how configs are resolved.
var EmbeddedConfigLookup = func(device string) ([]byte, bool) {
	b, ok := embeddedConfigs[device]
	return b, ok
}

// typed lists the keys published as Go values rather than decoded JSON, so
// their consumers get the struct they expect.
var typed = map[string]func(json.RawMessage) (any, error){
	"timer":     decodeAs[types.TimerConfig],
	"heartbeat": decodeAs[types.HeartbeatConfig],
}

func decodeAs[T any](raw json.RawMessage) (any, error) {
	var v T
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil, err
	}
	return v, nil
}

type ConfigService struct {
	Name string
	log  logx.Logger
}

func NewConfigService() *ConfigService {
	return &ConfigService{Name: serviceName, log: logx.New(serviceName)}
}

// publishConfig reads the device config from embedded data and publishes
// each top-level key retained on config/<key>.
func (s *ConfigService) publishConfig(ctx context.Context, conn *bus.Connection) error {
	device, _ := ctx.Value(CtxDeviceKey).(string)
	if device == "" {
		return errors.New("missing device ID in context")
	}

	raw, ok := EmbeddedConfigLookup(device)
	if !ok || len(raw) == 0 {
		return errors.New("no embedded config for device: " + device)
	}

	var m map[string]json.RawMessage
	if err := json.Unmarshal(raw, &m); err != nil {
		return errors.New("embedded config is not a JSON object: " + err.Error())
	}

	var errs []error
	for _, k := range slices.Sorted(maps.Keys(m)) {
		dec := typed[k]
		if dec == nil {
			dec = decodeAs[any]
		}
		v, err := dec(m[k])
		if err != nil {
			errs = append(errs, errors.New(k+": "+err.Error()))
			continue
		}
		conn.Publish(conn.NewMessage(bus.T(configPrefix, k), v, true))
	}
	return errors.Join(errs...)
}

// Start launches the config publisher in a goroutine.
func (s *ConfigService) Start(ctx context.Context, conn *bus.Connection) {
	go func() {
		if err := s.publishConfig(ctx, conn); err != nil {
			s.log.Errorf("publish config: %v", err)
		}
	}()
}
