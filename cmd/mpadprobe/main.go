// Command mpadprobe is a read-only APRS-IS observer: it logs into the
// same upstream server and filter as the daemon, decodes frames with
// the real session/ingress/parser packages, and prints each admitted
// request's parsed Command — without ever calling Dispatch or writing
// to the socket. Grounded on the teacher's cmd/peerprobe/main.go: a
// standalone debugging utility that shares the main daemon's
// configuration but starts no other services.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joergschultzelutter/mpad/ack"
	"github.com/joergschultzelutter/mpad/config"
	"github.com/joergschultzelutter/mpad/dedup"
	"github.com/joergschultzelutter/mpad/ingress"
	"github.com/joergschultzelutter/mpad/parser"
	"github.com/joergschultzelutter/mpad/session"
)

func main() {
	cfgPath := flag.String("config", "config.yaml", "path to the daemon configuration file")
	flag.Parse()

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	sess := session.New(session.Config{
		Host:                 cfg.APRSIS.Host,
		Port:                 cfg.APRSIS.Port,
		Callsign:             cfg.Station.Callsign,
		Passcode:             cfg.Station.Passcode,
		Agent:                cfg.Station.Alias,
		Version:              cfg.Station.Version,
		Filter:               cfg.APRSIS.Filter,
		MessageAckPacing:     cfg.Pacing.MessageAck,
		BeaconBulletinPacing: cfg.Pacing.BeaconBulletin,
		ReadOnly:             true, // mpadprobe never writes to the socket
	})

	dedupCache := dedup.New(cfg.Dedup.TTL, cfg.Dedup.Capacity)
	dedupCache.Start(time.Minute)
	defer dedupCache.Stop()

	pending := ack.NewPending()
	ing := ingress.New(cfg.APRSIS.SecondaryFilter, dedupCache, pending, sess, cfg.Station.Alias)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := sess.Start(ctx); err != nil {
		log.Fatalf("session: %v", err)
	}
	defer sess.Stop()

	go ing.Run(ctx, sess.Inbound())

	fmt.Printf("mpadprobe observing %s:%d as %s (filter=%q)\n",
		cfg.APRSIS.Host, cfg.APRSIS.Port, cfg.Station.Callsign, cfg.APRSIS.Filter)

	go printRequests(ing, cfg)

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
	<-sig
}

func printRequests(ing *ingress.Ingress, cfg *config.Config) {
	for req := range ing.Requests() {
		country := parser.CallsignCountry(req.Sender)
		cmd := parser.Parse(req.Body, req.Sender, country, time.Now().UTC(), cfg.ForceUnicode, req.MessageID)
		fmt.Printf("%-9s msgid=%-5s action=%-14s target=%#v\n", req.Sender, req.MessageID, cmd.Action, cmd.Target)
	}
}
