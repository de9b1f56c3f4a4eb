package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/Agrid-Dev/heatload/internal/builder"
	httpctrl "github.com/Agrid-Dev/heatload/internal/controllers/http"
	modbusctrl "github.com/Agrid-Dev/heatload/internal/controllers/modbus"
	mqttctrl "github.com/Agrid-Dev/heatload/internal/controllers/mqtt"
	"github.com/Agrid-Dev/heatload/internal/metrics"
	"github.com/Agrid-Dev/heatload/internal/project"
	"github.com/Agrid-Dev/heatload/internal/storage/postgres"
)

type runner interface {
	Run(ctx context.Context) error
}

func (c *cli) serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Calculate the configured building and expose it over HTTP, MQTT and Modbus",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return c.serve(cmd.Context())
		},
	}
}

func (c *cli) serve(ctx context.Context) error {
	cfg := c.cfg
	metrics.Init()

	opts := []project.Option{project.WithLogger(c.logger)}
	if cfg.Storage.PostgresDSN != "" {
		db, err := postgres.Open(ctx, cfg.Storage.PostgresDSN)
		if err != nil {
			return err
		}
		defer db.Close()
		repo := postgres.NewRunRepository(db)
		if err := repo.EnsureSchema(ctx); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
		opts = append(opts, project.WithRecorder(repo))
	}
	proj := project.New(cfg.ProjectID, opts...)

	if _, err := proj.Recalculate(ctx, builder.FileSource{Path: cfg.Building.Path, Logger: c.logger}); err != nil {
		return err
	}

	runners, err := c.controllers(proj)
	if err != nil {
		return err
	}
	if len(runners) == 0 {
		return errors.New("no controller enabled")
	}

	g, gctx := errgroup.WithContext(ctx)
	for _, r := range runners {
		g.Go(func() error { return r.Run(gctx) })
	}
	err = g.Wait()
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		c.logger.Info("shutting down")
		return nil
	}
	return err
}

func (c *cli) controllers(proj *project.Project) ([]runner, error) {
	ctrl := c.cfg.Controllers
	var runners []runner

	if ctrl.HTTP.Enabled {
		runners = append(runners, httpctrl.New(proj, ctrl.HTTP.Addr, c.logger))
	}
	if ctrl.MQTT.Enabled {
		m, err := mqttctrl.New(proj, mqttctrl.Config{
			ProjectID:       c.cfg.ProjectID,
			BrokerURL:       ctrl.MQTT.BrokerURL,
			ClientID:        ctrl.MQTT.ClientID,
			BaseTopic:       ctrl.MQTT.BaseTopic,
			QoS:             ctrl.MQTT.QoS,
			RetainReport:    ctrl.MQTT.RetainReport,
			PublishInterval: ctrl.MQTT.PublishInterval,
			Username:        ctrl.MQTT.Username,
			Password:        ctrl.MQTT.Password,
		}, c.logger)
		if err != nil {
			return nil, err
		}
		runners = append(runners, m)
	}
	if ctrl.MODBUS.Enabled {
		m, err := modbusctrl.New(proj, modbusctrl.Config{
			Addr:   ctrl.MODBUS.Addr,
			UnitID: ctrl.MODBUS.UnitID,
		}, c.logger)
		if err != nil {
			return nil, err
		}
		runners = append(runners, m)
	}
	c.logger.Debug("controllers configured",
		zap.Bool("http", ctrl.HTTP.Enabled),
		zap.Bool("mqtt", ctrl.MQTT.Enabled),
		zap.Bool("modbus", ctrl.MODBUS.Enabled),
	)
	return runners, nil
}
