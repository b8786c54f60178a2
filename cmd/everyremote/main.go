// Command everyremote is a diagnostic tool for the HID device: it builds
// advertising payloads, dumps the report descriptor, inspects bond files
// and sniffs H4 traffic from a serial port.
package main

import (
	"fmt"
	"os"

	"github.com/jacobsa/go-serial/serial"
	"github.com/pkg/errors"
	"github.com/urfave/cli"

	"github.com/everyremote/hid"
	"github.com/everyremote/hid/adv"
	"github.com/everyremote/hid/config"
	"github.com/everyremote/hid/keyboard"
	"github.com/everyremote/hid/keystore"
	"github.com/everyremote/hid/transport/h4"
)

func main() {
	app := cli.NewApp()
	app.Name = "everyremote"
	app.Usage = "BLE HID device diagnostics"

	app.Flags = []cli.Flag{
		cli.BoolFlag{
			Name:  "debug",
			Usage: "enable debug logging",
		},
	}
	app.Before = func(c *cli.Context) error {
		if c.Bool("debug") {
			return hid.SetLogLevelMax()
		}
		return nil
	}

	app.Commands = []cli.Command{
		{
			Name:  "adv-payload",
			Usage: "build and print the advertising payload",
			Flags: []cli.Flag{
				cli.StringFlag{Name: "name", Value: "Generic HID", Usage: "complete local name"},
				cli.UintFlag{Name: "appearance", Value: 960, Usage: "appearance value"},
			},
			Action: advPayload,
		},
		{
			Name:   "report-map",
			Usage:  "dump the HID report descriptor",
			Action: reportMap,
		},
		{
			Name:  "bonds",
			Usage: "inspect or clear a bond file",
			Flags: []cli.Flag{
				cli.StringFlag{Name: "dir", Value: ".", Usage: "bond file directory"},
			},
			Subcommands: []cli.Command{
				{Name: "list", Usage: "list stored secrets", Action: bondsList},
				{Name: "clear", Usage: "remove all stored secrets", Action: bondsClear},
			},
		},
		{
			Name:  "sniff",
			Usage: "hex-dump H4 frames from a serial port",
			Flags: []cli.Flag{
				cli.StringFlag{Name: "port", Value: "/dev/ttyUSB0", Usage: "serial port"},
				cli.UintFlag{Name: "baud", Value: 1000000, Usage: "baud rate"},
			},
			Action: sniff,
		},
		{
			Name:      "check-config",
			Usage:     "load and validate a config file",
			ArgsUsage: "<config.yaml>",
			Action:    checkConfig,
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func advPayload(c *cli.Context) error {
	payload, err := adv.BuildPayload(adv.Config{
		Name:       c.String("name"),
		Services:   []hid.UUID{hid.HIDServiceUUID},
		Appearance: uint16(c.Uint("appearance")),
	})
	if err != nil {
		return err
	}
	fmt.Printf("% 02x (%d bytes)\n", payload, len(payload))
	return nil
}

func reportMap(c *cli.Context) error {
	rm := keyboard.ReportMap()
	for i := 0; i < len(rm); i += 8 {
		end := i + 8
		if end > len(rm) {
			end = len(rm)
		}
		fmt.Printf("%04x  % 02x\n", i, rm[i:end])
	}
	fmt.Printf("%d bytes\n", len(rm))
	return nil
}

func openStore(c *cli.Context) (*keystore.Store, error) {
	backend, err := keystore.NewFileBackend(c.Parent().String("dir"))
	if err != nil {
		return nil, err
	}
	return keystore.New(backend), nil
}

func bondsList(c *cli.Context) error {
	store, err := openStore(c)
	if err != nil {
		return err
	}
	if !store.Load() {
		fmt.Println("no bond file")
		return nil
	}
	for _, s := range store.Secrets() {
		fmt.Printf("kind %d  key % 02x  value %d bytes\n", s.Kind, s.Key, len(s.Value))
	}
	fmt.Printf("%d secrets\n", store.Count())
	return nil
}

func bondsClear(c *cli.Context) error {
	store, err := openStore(c)
	if err != nil {
		return err
	}
	store.Load()
	n := store.Count()
	store.Clear()
	if !store.Save() {
		return fmt.Errorf("failed to persist cleared bond file")
	}
	fmt.Printf("removed %d secrets\n", n)
	return nil
}

func sniff(c *cli.Context) error {
	t, err := h4.New(serial.OpenOptions{
		PortName:        c.String("port"),
		BaudRate:        c.Uint("baud"),
		DataBits:        8,
		StopBits:        1,
		MinimumReadSize: 0,
	})
	if err != nil {
		return err
	}
	defer t.Close()

	buf := make([]byte, 512)
	for {
		n, err := t.Read(buf)
		if errors.Cause(err) == h4.ErrReadTimeout {
			// Quiet link; keep listening.
			continue
		}
		if err != nil {
			return err
		}
		fmt.Printf("% 02x\n", buf[:n])
	}
}

func checkConfig(c *cli.Context) error {
	if c.NArg() != 1 {
		return fmt.Errorf("usage: everyremote check-config <config.yaml>")
	}
	cfg, err := config.Load(c.Args().First())
	if err != nil {
		return err
	}
	fmt.Printf("ok: device %q, appearance %d, passkey %06d\n",
		cfg.Device.Name, cfg.Device.Appearance, cfg.Security.Passkey)
	return nil
}
