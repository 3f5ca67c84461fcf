package main

import (
	"github.com/spf13/cobra"

	"tempmon-go/i2cbus"
	"tempmon-go/services/config"
	"tempmon-go/types"
	"tempmon-go/x/logx"
	"tempmon-go/x/strx"
)

type globalFlags struct {
	config   string
	sim      bool
	bus      int
	logLevel string
}

func newRootCmd() *cobra.Command {
	g := &globalFlags{bus: -1}

	cmd := &cobra.Command{
		Use:          "tempmon",
		Short:        "Board temperature monitor",
		SilenceUsage: true,
	}

	cmd.PersistentFlags().StringVarP(&g.config, "config", "c", "", "YAML config file (defaults to the embedded host profile)")
	cmd.PersistentFlags().BoolVar(&g.sim, "sim", false, "use a simulated bus carrying the default sensors")
	cmd.PersistentFlags().IntVar(&g.bus, "bus", -1, "I2C bus number (overrides config)")
	cmd.PersistentFlags().StringVar(&g.logLevel, "log-level", "", "debug, info, warn or error (overrides config)")

	cmd.AddCommand(runCmd(g), scanCmd(g))
	return cmd
}

// load resolves the config, applies flag overrides and sets up logging.
func (g *globalFlags) load() (config.Config, error) {
	var (
		cfg config.Config
		err error
	)
	if g.config != "" {
		cfg, err = config.Load(g.config)
		if err != nil {
			return config.Config{}, err
		}
	} else {
		cfg = config.Default("host")
	}
	if g.bus >= 0 {
		cfg.Bus = g.bus
	}
	if g.logLevel != "" {
		cfg.Log.Level = g.logLevel
	}
	if err := cfg.Validate(); err != nil {
		return config.Config{}, err
	}
	logx.Setup(logx.Config{Level: cfg.Log.Level, Format: strx.Coalesce(cfg.Log.Format, "text")})
	return cfg, nil
}

func (g *globalFlags) manager(cfg config.Config) *i2cbus.Manager {
	if g.sim {
		return i2cbus.NewManager(i2cbus.SimFactory(map[int]*i2cbus.Sim{cfg.Bus: demoSim()}))
	}
	return i2cbus.NewManager(hostFactory())
}

// demoSim answers at every default binding with a fixed reading, and leaves
// the upconverter unplugged.
func demoSim() *i2cbus.Sim {
	s := i2cbus.NewSim()
	for i, b := range types.DefaultSensors {
		if b.Name == types.SensorUpconverter {
			continue
		}
		s.SetTemperature(b.Address, 24.25+float32(i)*1.5)
	}
	return s
}
