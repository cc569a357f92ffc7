package main

import (
	"github.com/spf13/cobra"

	"github.com/taigrr/meshsvg/internal/server"
	"github.com/taigrr/meshsvg/pkg/models"
)

func newServeCmd(a *app) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve [mesh]",
		Short: "Run the HTTP render service",
		Long: `Serve POST /render (JSON mesh in, SVG out) and GET /healthz.

With a mesh argument the server also answers GET /mesh.svg?yaw=<radians>
and streams turntable frames over a websocket at GET /spin.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Flags().Changed("addr") {
				a.cfg.Addr = addr
			}

			var mesh *models.Mesh
			if len(args) == 1 {
				m, err := models.Load(args[0])
				if err != nil {
					return err
				}
				mesh = m
				a.log.Info("mesh loaded", "name", m.Name, "vertices", m.VertexCount(), "cells", m.CellCount())
			}

			return server.New(a.cfg, mesh, a.log).Run(cmd.Context())
		},
	}

	cmd.Flags().StringVar(&addr, "addr", ":8080", "Listen address")
	return cmd
}
