package cli

import (
	"net"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"famjam-cli/internal/web"

	"github.com/spf13/cobra"
)

func newWebCmd(app *App) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "web",
		Short: "Serve the board over HTTP (REST + websocket live views)",
		Long: strings.TrimSpace(`
Serve boards from the configured store over HTTP.

Routes:
  GET    /api/boards/:board/tasks?filter=&sort=
  POST   /api/boards/:board/tasks
  PUT    /api/boards/:board/tasks/:id/status
  DELETE /api/boards/:board/tasks/:id
  POST   /api/boards/:board/clear-done
  GET    /ws   (send {"type":"join","board":"..."} to receive live views)
`),
		Example: strings.TrimSpace(`
famjam web
famjam web --addr 127.0.0.1:3335
`),
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			listenAddr := strings.TrimSpace(addr)
			if listenAddr == "" {
				listenAddr = app.cfg.Web.Addr
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			st, err := app.openStore(ctx)
			if err != nil {
				return writeErr(cmd, err)
			}
			defer st.Close()

			srv, err := web.NewServer(web.ServerConfig{
				Addr:   listenAddr,
				Store:  st,
				Logger: app.logger,
			})
			if err != nil {
				return writeErr(cmd, err)
			}

			ln, err := net.Listen("tcp", listenAddr)
			if err != nil {
				return writeErr(cmd, err)
			}

			url := "http://" + ln.Addr().String() + "/"
			_ = writeOut(cmd, app, map[string]any{
				"data": map[string]any{
					"addr":    ln.Addr().String(),
					"url":     url,
					"backend": app.cfg.Backend,
				},
				"_hints": []string{
					"curl " + url + "health",
					"curl " + url + "api/boards/<board>/tasks",
				},
			})
			app.logger.WithField("addr", ln.Addr().String()).Info("web server listening")

			if err := srv.Serve(ctx, ln); err != nil {
				return writeErr(cmd, err)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "Listen address (default: [web] addr from config)")
	return cmd
}
