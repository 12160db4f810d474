// Package config holds every tunable number of a run: world bounds, interaction
// rules, metabolism, starting population and the surrounding process settings.
package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// World describes the playable rectangle and the setup-time resource fill.
type World struct {
	MinX int `yaml:"min_x" json:"min_x"`
	MaxX int `yaml:"max_x" json:"max_x"`
	MinY int `yaml:"min_y" json:"min_y"`
	MaxY int `yaml:"max_y" json:"max_y"`

	Density    float64 `yaml:"density" json:"density"`         // Fraction of cells seeded with a resource
	AmountMin  uint32  `yaml:"amount_min" json:"amount_min"`   // Smallest seeded resource amount
	AmountMax  uint32  `yaml:"amount_max" json:"amount_max"`   // Largest seeded resource amount
	WaterLevel float64 `yaml:"water_level" json:"water_level"` // Moisture above this seeds water instead of food
	Seed       int64   `yaml:"seed" json:"seed"`               // 0 = draw one at startup
}

// Rules are the constants of intent resolution.
type Rules struct {
	ResourceCap            uint32  `yaml:"resource_cap" json:"resource_cap"`                         // Max units one Eat/Drink transfers
	IdleMoveChance         float64 `yaml:"idle_move_chance" json:"idle_move_chance"`                 // Chance an Idle turns into a one-step wander
	AttackDamage           uint32  `yaml:"attack_damage" json:"attack_damage"`                       // Health removed from the target
	AttackEnergyCost       uint32  `yaml:"attack_energy_cost" json:"attack_energy_cost"`             // Energy paid by the attacker
	CorpseTicks            uint32  `yaml:"corpse_ticks" json:"corpse_ticks"`                         // Ticks a corpse lingers before removal
	CorpseFoodMin          uint32  `yaml:"corpse_food_min" json:"corpse_food_min"`                   // Floor of the food a death deposits
	ReproductionCooldown   uint32  `yaml:"reproduction_cooldown" json:"reproduction_cooldown"`       // Ticks before a parent may mate again
	ReproductionEnergyCost uint32  `yaml:"reproduction_energy_cost" json:"reproduction_energy_cost"` // Energy each parent pays
	ReproductionMinEnergy  uint32  `yaml:"reproduction_min_energy" json:"reproduction_min_energy"`   // Energy needed to be eligible
	MaxWalkableDistance    int     `yaml:"max_walkable_distance" json:"max_walkable_distance"`       // Cap of the per-direction ray cast
}

// Metabolism drives the internal vital tick of an active entity.
type Metabolism struct {
	EnergyDecay      uint32 `yaml:"energy_decay" json:"energy_decay"`
	WaterDecay       uint32 `yaml:"water_decay" json:"water_decay"`
	StarvationDamage uint32 `yaml:"starvation_damage" json:"starvation_damage"` // Health lost while energy or water is empty
	HealthRegen      uint32 `yaml:"health_regen" json:"health_regen"`           // Health gained while both are above half
}

// Population is the starting head count per species.
type Population struct {
	Herbivores int `yaml:"herbivores" json:"herbivores"`
	Carnivores int `yaml:"carnivores" json:"carnivores"`
	Omnivores  int `yaml:"omnivores" json:"omnivores"`
}

// Engine controls the real-time loop around the simulation.
type Engine struct {
	TickIntervalMS int     `yaml:"tick_interval_ms" json:"tick_interval_ms"`
	Speed          float64 `yaml:"speed" json:"speed"`
	ReportEvery    uint64  `yaml:"report_every" json:"report_every"` // Ticks between report log lines
	MaxTicks       uint64  `yaml:"max_ticks" json:"max_ticks"`       // 0 = run until stopped
}

// Journal selects where observability events are stored.
type Journal struct {
	Enabled bool   `yaml:"enabled" json:"enabled"`
	Path    string `yaml:"path" json:"path"`
}

// API configures the observation server.
type API struct {
	Port     int    `yaml:"port" json:"port"`
	AdminKey string `yaml:"-" json:"-"`
}

// Config is the root of a run's configuration.
type Config struct {
	World      World      `yaml:"world" json:"world"`
	Rules      Rules      `yaml:"rules" json:"rules"`
	Metabolism Metabolism `yaml:"metabolism" json:"metabolism"`
	Population Population `yaml:"population" json:"population"`
	Engine     Engine     `yaml:"engine" json:"engine"`
	Journal    Journal    `yaml:"journal" json:"journal"`
	API        API        `yaml:"api" json:"api"`
	LogLevel   string     `yaml:"log_level" json:"log_level"`
}

// Default returns the stock configuration: a 30×30 world centred on the
// origin with a handful of each species.
func Default() Config {
	return Config{
		World: World{
			MinX:       -15,
			MaxX:       14,
			MinY:       -15,
			MaxY:       14,
			Density:    0.05,
			AmountMin:  10,
			AmountMax:  30,
			WaterLevel: 0.62,
			Seed:       0,
		},
		Rules: DefaultRules(),
		Metabolism: Metabolism{
			EnergyDecay:      1,
			WaterDecay:       1,
			StarvationDamage: 2,
			HealthRegen:      1,
		},
		Population: Population{
			Herbivores: 4,
			Carnivores: 2,
			Omnivores:  2,
		},
		Engine: Engine{
			TickIntervalMS: 250,
			Speed:          1.0,
			ReportEvery:    100,
		},
		Journal: Journal{
			Enabled: true,
			Path:    "data/curious.db",
		},
		API: API{
			Port: 8080,
		},
		LogLevel: "info",
	}
}

// DefaultRules returns the stock interaction constants.
func DefaultRules() Rules {
	return Rules{
		ResourceCap:            5,
		IdleMoveChance:         0.30,
		AttackDamage:           6,
		AttackEnergyCost:       3,
		CorpseTicks:            5,
		CorpseFoodMin:          5,
		ReproductionCooldown:   100,
		ReproductionEnergyCost: 10,
		ReproductionMinEnergy:  20,
		MaxWalkableDistance:    255,
	}
}

// Load reads a YAML file on top of Default. Keys missing from the file keep
// their default value.
func Load(path string) (Config, error) {
	cfg := Default()
	b, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Validate reports the first setting that cannot produce a working run.
func (c Config) Validate() error {
	w := c.World
	if w.MinX > w.MaxX || w.MinY > w.MaxY {
		return fmt.Errorf("world bounds are empty: x [%d, %d] y [%d, %d]", w.MinX, w.MaxX, w.MinY, w.MaxY)
	}
	if w.Density < 0 || w.Density > 1 {
		return fmt.Errorf("world.density must be within [0, 1], got %v", w.Density)
	}
	if w.AmountMin == 0 || w.AmountMin > w.AmountMax {
		return fmt.Errorf("world.amount_min/amount_max invalid: %d..%d", w.AmountMin, w.AmountMax)
	}
	if c.Rules.ResourceCap == 0 {
		return errors.New("rules.resource_cap must be positive")
	}
	if c.Rules.IdleMoveChance < 0 || c.Rules.IdleMoveChance > 1 {
		return fmt.Errorf("rules.idle_move_chance must be within [0, 1], got %v", c.Rules.IdleMoveChance)
	}
	if c.Rules.MaxWalkableDistance <= 0 {
		return errors.New("rules.max_walkable_distance must be positive")
	}
	p := c.Population
	if p.Herbivores < 0 || p.Carnivores < 0 || p.Omnivores < 0 {
		return errors.New("population counts cannot be negative")
	}
	area := (w.MaxX - w.MinX + 1) * (w.MaxY - w.MinY + 1)
	if p.Herbivores+p.Carnivores+p.Omnivores > area {
		return fmt.Errorf("population %d does not fit in %d cells", p.Herbivores+p.Carnivores+p.Omnivores, area)
	}
	if c.Engine.TickIntervalMS <= 0 {
		return errors.New("engine.tick_interval_ms must be positive")
	}
	if c.Journal.Enabled && c.Journal.Path == "" {
		return errors.New("journal.path is required when the journal is enabled")
	}
	return nil
}
