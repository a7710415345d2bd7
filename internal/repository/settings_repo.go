package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"boiler_controller/internal/control"
	"boiler_controller/internal/sensor"
)

type SettingsSQLite struct {
	db  *sql.DB
	now func() time.Time
}

func NewSettingsSQLite(db *sql.DB) *SettingsSQLite {
	return &SettingsSQLite{db: db, now: time.Now}
}

const (
	settingsRowID = 1

	upsertSettingsSQL = `
		INSERT INTO boiler_settings (id, mode, state, system_enabled, fan, pump, auto_params, comfort_params, mapping, fan_minutes, fan_cycles, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			mode=excluded.mode,
			state=excluded.state,
			system_enabled=excluded.system_enabled,
			fan=excluded.fan,
			pump=excluded.pump,
			auto_params=excluded.auto_params,
			comfort_params=excluded.comfort_params,
			mapping=excluded.mapping,
			fan_minutes=excluded.fan_minutes,
			fan_cycles=excluded.fan_cycles,
			updated_at=excluded.updated_at
	`

	selectSettingsSQL = `
		SELECT mode, state, system_enabled, fan, pump, auto_params, comfort_params, mapping, fan_minutes, fan_cycles
		FROM boiler_settings WHERE id=?
	`
)

func marshalJSON(v any) (string, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// Save upserts the settings row (id always 1).
func (r *SettingsSQLite) Save(ctx context.Context, p control.Persisted) error {
	autoJSON, err := marshalJSON(p.Auto)
	if err != nil {
		return fmt.Errorf("marshal auto params: %w", err)
	}
	comfortJSON, err := marshalJSON(p.Comfort)
	if err != nil {
		return fmt.Errorf("marshal comfort params: %w", err)
	}
	mapping := p.Mapping
	if mapping == nil {
		mapping = map[sensor.Role]string{}
	}
	mappingJSON, err := marshalJSON(mapping)
	if err != nil {
		return fmt.Errorf("marshal mapping: %w", err)
	}

	_, err = r.db.ExecContext(ctx, upsertSettingsSQL,
		settingsRowID,
		p.Mode.String(),
		p.State.String(),
		p.SystemEnabled,
		p.Fan,
		p.Pump,
		autoJSON,
		comfortJSON,
		mappingJSON,
		int64(p.FanMinutes),
		int64(p.FanCycles),
		r.now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("save settings: %w", err)
	}
	return nil
}

// Load fetches the settings row.
func (r *SettingsSQLite) Load(ctx context.Context) (control.Persisted, bool, error) {
	row := r.db.QueryRowContext(ctx, selectSettingsSQL, settingsRowID)

	var (
		p                              control.Persisted
		mode, state                    string
		autoJSON, comfortJSON, mapJSON string
		fanMinutes, fanCycles          int64
	)
	if err := row.Scan(
		&mode,
		&state,
		&p.SystemEnabled,
		&p.Fan,
		&p.Pump,
		&autoJSON,
		&comfortJSON,
		&mapJSON,
		&fanMinutes,
		&fanCycles,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return control.Persisted{}, false, nil
		}
		return control.Persisted{}, false, fmt.Errorf("load settings: %w", err)
	}

	var err error
	if p.Mode, err = control.ParseMode(mode); err != nil {
		return control.Persisted{}, false, fmt.Errorf("load settings: %w", err)
	}
	if p.State, err = control.ParseState(state); err != nil {
		return control.Persisted{}, false, fmt.Errorf("load settings: %w", err)
	}
	if err := json.Unmarshal([]byte(autoJSON), &p.Auto); err != nil {
		return control.Persisted{}, false, fmt.Errorf("decode auto params: %w", err)
	}
	if err := json.Unmarshal([]byte(comfortJSON), &p.Comfort); err != nil {
		return control.Persisted{}, false, fmt.Errorf("decode comfort params: %w", err)
	}
	if err := json.Unmarshal([]byte(mapJSON), &p.Mapping); err != nil {
		return control.Persisted{}, false, fmt.Errorf("decode mapping: %w", err)
	}
	p.FanMinutes = uint64(fanMinutes)
	p.FanCycles = uint64(fanCycles)
	return p, true, nil
}
