package main

import (
	"bufio"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/pterm/pterm"
	"gopkg.in/yaml.v2"

	"github.com/Mordris/Interactive-Web-Based-Blockchain-Simulator/commands"
	"github.com/Mordris/Interactive-Web-Based-Blockchain-Simulator/config"
	"github.com/Mordris/Interactive-Web-Based-Blockchain-Simulator/ledger"
	"github.com/Mordris/Interactive-Web-Based-Blockchain-Simulator/storage"
)

var (
	port       *string
	dataPath   *string
	configPath *string
	minerAddr  *string
)

func init() {
	port = flag.String("port", "", "port for the HTTP api, overrides config")
	dataPath = flag.String("data_path", "", "path to the ledger document, overrides config")
	configPath = flag.String("config_path", "cmd/node/config.yaml", "path to node config")
	minerAddr = flag.String("miner_address", "node-operator", "address credited with mining rewards")
}

// How long the mining loop sleeps when the pool is empty.
const idlePoll = 500 * time.Millisecond

func ParseAppConfig(path string) config.AppConfig {
	c := config.DefaultConfig()
	raw, err := os.ReadFile(path)
	if err != nil {
		log.Printf("config %s not readable (%v), using defaults", path, err)
		return c
	}
	if err = yaml.Unmarshal(raw, &c); err != nil {
		log.Fatal("Unmarshal: ", err)
	}
	return c
}

// initLedger restores persisted state, or falls back to a fresh ledger
// with a genesis block when there is nothing usable on disk. Absent state
// is routine; corrupt state is reported loudly before reinitializing.
func initLedger(cfg config.AppConfig) *ledger.Ledger {
	l, err := storage.Load(cfg.DATA_PATH)
	switch {
	case err == nil:
		pterm.Success.Printfln("loaded ledger from %s, height %d", cfg.DATA_PATH, l.Height())
		if report, ok := l.CheckIntegrity(); !ok {
			pterm.Warning.Printfln("loaded chain fails validation at block %d: %s", report.BlockIndex, report.Reason)
		}
		return l
	case errors.Is(err, storage.ErrNoState):
		pterm.Info.Printfln("no saved state at %s, starting fresh", cfg.DATA_PATH)
	default:
		pterm.Warning.Printfln("discarding saved state: %v", err)
	}

	l = ledger.NewFromConfig(cfg)
	if _, err := l.CreateGenesis(); err != nil {
		log.Fatal(err)
	}
	return l
}

func ParseCommand(cmd chan commands.Command) {
	reader := bufio.NewReader(os.Stdin)
	for {
		fmt.Print("> ")
		text, err := reader.ReadString('\n')
		if err != nil {
			return
		}
		text = strings.TrimSpace(text)
		if text == "" {
			continue
		}
		c, err := commands.CreateCommand(text)
		if err != nil {
			log.Println(err)
			continue
		}
		cmd <- c
	}
}

// HandleCommand drives the mining loop. The outer channel takes console
// commands; ctl relays stop/restart into the in-flight nonce search so a
// long search never blocks the console.
func HandleCommand(cmd chan commands.Command, node *Node) {
	ctl := make(chan commands.Command, 1)
	isRunning := false
	for {
		c := <-cmd
		switch c.Op {
		case commands.START:
			if isRunning {
				log.Print("mining has already been started\n> ")
				continue
			}
			isRunning = true
			go func() {
				for {
					block, elapsed, interrupt, err := node.Ledger().MinePending(node.Miner(), ctl)
					switch {
					case errors.Is(err, ledger.ErrNothingToMine):
						// Nothing to do; check for a stop before idling.
						select {
						case c := <-ctl:
							if c.Op == commands.STOP {
								isRunning = false
								return
							}
						default:
						}
						time.Sleep(idlePoll)
					case err != nil:
						log.Print(err)
						fmt.Print("> ")
					case interrupt.Op == commands.STOP:
						isRunning = false
						return
					case interrupt.Op == commands.RESTART:
						// Loop around and snapshot the pool again.
					default:
						pterm.Success.Printfln("block #%d mined in %s, hash %s", block.Index, elapsed, block.Hash)
						if err := node.Persist(); err != nil {
							log.Print(err)
						}
						fmt.Print("> ")
					}
				}
			}()
		case commands.RESTART, commands.STOP:
			if !isRunning {
				log.Print("no running mining task to restart or stop")
				fmt.Print("> ")
				continue
			}
			go func() {
				// Relay into the search from a separate goroutine so the
				// console loop itself never blocks.
				ctl <- c
			}()
		case commands.STATUS:
			l := node.Ledger()
			pterm.Info.Printfln("ledger %s: height %d, %d pending, difficulty %d, reward %.2f",
				l.UUID(), l.Height(), len(l.Pending()), l.Difficulty(), l.MiningReward())
		case commands.VALIDATE:
			if report, ok := node.Ledger().CheckIntegrity(); !ok {
				pterm.Error.Printfln("chain invalid at block %d: %s", report.BlockIndex, report.Reason)
			} else {
				pterm.Success.Printfln("chain valid")
			}
		case commands.SAVE:
			if err := node.Persist(); err != nil {
				log.Print(err)
				continue
			}
			pterm.Success.Printfln("ledger saved to %s", node.DataPath())
		default:
			log.Print("Unrecognized command:", c)
			fmt.Print("> ")
		}
	}
}

func main() {
	flag.Parse()

	cfg := ParseAppConfig(*configPath)
	if *port != "" {
		cfg.PORT = *port
	}
	if *dataPath != "" {
		cfg.DATA_PATH = *dataPath
	}

	node := NewNode(initLedger(cfg), cfg, *minerAddr)

	cmd := make(chan commands.Command)
	go ParseCommand(cmd)
	go HandleCommand(cmd, node)

	pterm.Info.Printfln("serving ledger api on port %s (start/stop/restart/status/validate/save on the console)", cfg.PORT)
	log.Fatal(http.ListenAndServe(fmt.Sprintf("localhost:%s", cfg.PORT), node.Routes()))
}
