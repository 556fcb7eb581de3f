package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"sync"

	"github.com/autoreleasefool/hive-for-ios-sub001/internal/config"
	"github.com/autoreleasefool/hive-for-ios-sub001/internal/protocol"
	"github.com/autoreleasefool/hive-for-ios-sub001/internal/repository/redis"
	"github.com/autoreleasefool/hive-for-ios-sub001/internal/service/game"
	"github.com/autoreleasefool/hive-for-ios-sub001/internal/transport/websocket"
	"github.com/autoreleasefool/hive-for-ios-sub001/pkg/auth"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
)

type playOptions struct {
	server      string
	token       string
	offline     bool
	metricsAddr string
}

func playCmd() *cobra.Command {
	var opts playOptions

	cmd := &cobra.Command{
		Use:   "play",
		Short: "Join a match and play from the terminal",
		Long: `Connect to a match server and play from the terminal.

Server events are printed as they arrive; commands are read from stdin.
The connection is never retried automatically: after a drop, type
"reconnect".

Examples:
  hivectl play --server ws://localhost:8080/ws/friday
  hivectl play --token $(hivectl token --name alice)
  hivectl play --metrics-addr :9100`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.LoadConfig()
			if opts.server == "" {
				opts.server = cfg.ServerURL
			}
			if opts.metricsAddr == "" {
				opts.metricsAddr = cfg.MetricsAddr
			}
			return runPlay(cmd.Context(), cfg, opts, cmd.InOrStdin(), cmd.OutOrStdout())
		},
	}

	cmd.Flags().StringVar(&opts.server, "server", "", "Match endpoint (default $HIVE_SERVER_URL)")
	cmd.Flags().StringVar(&opts.token, "token", "", "Access token (default $HIVE_ACCESS_TOKEN)")
	cmd.Flags().BoolVar(&opts.offline, "offline", false, "Use an offline account (connections are refused)")
	cmd.Flags().StringVar(&opts.metricsAddr, "metrics-addr", "", "Serve Prometheus metrics on this address")

	return cmd
}

// resolveCredential picks the account to connect with: offline first, then an
// explicit token, then the OAuth client, then the configured token.
func resolveCredential(ctx context.Context, cfg *config.Config, opts playOptions) auth.Credential {
	switch {
	case opts.offline || cfg.Offline:
		return auth.NewOfflineCredential(cfg.OfflineName)
	case opts.token != "":
		return auth.NewTokenCredential(opts.token)
	case cfg.OAuthConfig.Enabled():
		return auth.NewOAuthCredential(cfg.OAuthConfig.TokenSource(ctx))
	default:
		return auth.NewTokenCredential(cfg.AccessToken)
	}
}

func sessionConfig(cfg *config.Config) websocket.SessionConfig {
	return websocket.SessionConfig{
		PingInterval:     cfg.PingInterval,
		PongWait:         cfg.PongWait,
		WriteWait:        cfg.WriteWait,
		HandshakeTimeout: cfg.HandshakeTimeout,
	}
}

func runPlay(ctx context.Context, cfg *config.Config, opts playOptions, in io.Reader, out io.Writer) error {
	if opts.metricsAddr != "" {
		go serveMetrics(opts.metricsAddr)
	}

	client := game.NewClient(protocol.NewDecoder(nil), sessionConfig(cfg))
	defer client.Close()

	if err := client.Prepare(opts.server, resolveCredential(ctx, cfg, opts)); err != nil {
		return err
	}
	endpoint := client.Config().Endpoint

	snapshots := openSnapshotCache(ctx, cfg)
	if snapshots != nil {
		if state, err := snapshots.LatestSnapshot(ctx, endpoint); err == nil {
			fmt.Fprintf(out, "cached %s\n", state)
		}
	}

	console := &console{out: out, snapshots: snapshots, endpoint: endpoint}

	sub, err := client.OpenConnection()
	if err != nil {
		return err
	}
	console.follow(ctx, sub)

	scanner := bufio.NewScanner(in)
	for scanner.Scan() {
		command, err := parseConsoleLine(scanner.Text())
		if err != nil {
			console.printf("%v\n", err)
			continue
		}

		switch command.action {
		case actionNone:
		case actionHelp:
			console.printf("%s\n", consoleHelp)
		case actionQuit:
			return nil
		case actionReconnect:
			sub, err := client.Reconnect()
			if err != nil {
				return err
			}
			console.follow(ctx, sub)
		case actionSend:
			client.Send(command.message, func(err error) {
				if err != nil {
					console.printf("send failed: %v\n", err)
				}
			})
		}
	}
	return scanner.Err()
}

func serveMetrics(addr string) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	log.Printf("[CLIENT] Serving metrics on %s", addr)
	if err := http.ListenAndServe(addr, mux); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Printf("[CLIENT] Metrics server stopped: %v", err)
	}
}

func openSnapshotCache(ctx context.Context, cfg *config.Config) *redis.SnapshotCache {
	client, err := redis.InitRedis(ctx, cfg)
	if err != nil || client == nil {
		return nil
	}
	return redis.NewSnapshotCache(redis.NewRedisCache(client), cfg.SnapshotTTL)
}

// console serializes terminal output from the event printer and the input loop.
type console struct {
	mu        sync.Mutex
	out       io.Writer
	snapshots *redis.SnapshotCache
	endpoint  *url.URL
	following *game.Subscription
}

func (c *console) printf(format string, args ...interface{}) {
	c.mu.Lock()
	defer c.mu.Unlock()
	fmt.Fprintf(c.out, format, args...)
}

// follow prints sub's events until it ends. Reconnecting onto a live session
// hands back a subscription to the same stream, so the old printer is
// cancelled first to avoid printing every event twice.
func (c *console) follow(ctx context.Context, sub *game.Subscription) {
	c.mu.Lock()
	previous := c.following
	c.following = sub
	c.mu.Unlock()
	if previous != nil && previous != sub {
		previous.Cancel()
	}

	go func() {
		for e := range sub.Events() {
			switch e.Type {
			case game.EventConnected:
				c.printf("connected to %s\n", c.endpoint)
			case game.EventAlreadyConnected:
				c.printf("already connected to %s\n", c.endpoint)
			case game.EventMessage:
				c.printf("%s\n", describe(e.Message))
				c.cache(ctx, e.Message)
			}
		}
		if err := sub.Err(); err != nil {
			c.printf("connection lost: %v (type reconnect)\n", err)
		} else if sub.Stream().Finished() {
			c.printf("connection closed\n")
		}
	}()
}

func (c *console) cache(ctx context.Context, msg protocol.ServerMessage) {
	state, ok := msg.(protocol.GameStateMessage)
	if !ok || c.snapshots == nil {
		return
	}
	if err := c.snapshots.SaveSnapshot(ctx, c.endpoint, state.State); err != nil {
		log.Printf("[REDIS] %v", err)
	}
}
