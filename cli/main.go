// Command ecc508 talks to an ATECC508A, either on a real I²C bus or
// against the in-process emulator.
package main

import (
	"context"
	"encoding/hex"
	"fmt"
	"log"
	"log/slog"
	"os"

	"github.com/urfave/cli/v3"

	ecc508 "github.com/nevander/ecc508-go"
	"github.com/nevander/ecc508-go/emulator"
	"github.com/nevander/ecc508-go/i2cbus"
)

func main() {

	app := &cli.Command{
		Name:  "ecc508",
		Usage: "Talk to an ATECC508A cryptographic coprocessor",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "bus",
				Value: "1",
				Usage: "I²C bus name",
			},
			&cli.UintFlag{
				Name:  "address",
				Value: emulator.DefaultAddress,
				Usage: "7-bit device address",
			},
			&cli.BoolFlag{
				Name:  "emulator",
				Usage: "Run against a simulated device instead of hardware",
			},
			&cli.StringFlag{
				Name:  "state",
				Usage: "Emulator state file, loaded before and saved after the command",
			},
			&cli.BoolFlag{
				Name:  "verbose",
				Usage: "Enable debug logging",
			},
		},
		Commands: []*cli.Command{
			versionCommand(),
			serialCommand(),
			randomCommand(),
			configCommand(),
			lockedCommand(),
			lockCommand(),
			genkeyCommand(),
			pubkeyCommand(),
			signCommand(),
			verifyCommand(),
		},
	}

	if err := app.Run(context.Background(), os.Args); err != nil {
		log.Fatal(err)
	}
}

// withDevice opens the device named by the global flags, runs the action
// and, when the emulator is backed by a state file, saves the state back.
func withDevice(cmd *cli.Command, action func(*ecc508.Device) error) error {

	if cmd.Bool("verbose") {
		slog.SetLogLoggerLevel(slog.LevelDebug)
	}

	var bus ecc508.Bus
	var sim *emulator.Device

	if cmd.Bool("emulator") {

		sim = emulator.New()

		if path := cmd.String("state"); path != "" {
			data, err := os.ReadFile(path)
			if err == nil {
				if err := sim.Restore(data); err != nil {
					return err
				}
			} else if !os.IsNotExist(err) {
				return err
			}
		}

		bus = sim

	} else {
		bus = i2cbus.New(cmd.String("bus"))
	}

	device, err := ecc508.Open(bus, uint8(cmd.Uint("address")))
	if err != nil {
		return err
	}
	defer device.Close()

	if err := action(device); err != nil {
		return err
	}

	if sim != nil {
		if path := cmd.String("state"); path != "" {

			data, err := sim.Snapshot()
			if err != nil {
				return err
			}

			if err := os.WriteFile(path, data, 0o600); err != nil {
				return err
			}
		}
	}

	return nil
}

func versionCommand() *cli.Command {
	return &cli.Command{
		Name:  "version",
		Usage: "Print the device revision word",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			return withDevice(cmd, func(device *ecc508.Device) error {

				revision, err := device.Version()
				if err != nil {
					return err
				}

				fmt.Printf("0x%08x\n", revision)
				return nil
			})
		},
	}
}

func serialCommand() *cli.Command {
	return &cli.Command{
		Name:  "serial",
		Usage: "Print the device serial number",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			return withDevice(cmd, func(device *ecc508.Device) error {

				serial, err := device.SerialNumber()
				if err != nil {
					return err
				}

				fmt.Println(serial)
				return nil
			})
		},
	}
}

func randomCommand() *cli.Command {
	return &cli.Command{
		Name:  "random",
		Usage: "Read random bytes from the device RNG",
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:  "length",
				Value: 32,
				Usage: "Number of bytes",
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			return withDevice(cmd, func(device *ecc508.Device) error {

				data, err := device.Random(int(cmd.Int("length")))
				if err != nil {
					return err
				}

				fmt.Printf("%x\n", data)
				return nil
			})
		},
	}
}

func configCommand() *cli.Command {
	return &cli.Command{
		Name:  "config",
		Usage: "Dump the 128-byte configuration zone",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			return withDevice(cmd, func(device *ecc508.Device) error {

				data, err := device.ReadConfiguration()
				if err != nil {
					return err
				}

				fmt.Print(hex.Dump(data))
				return nil
			})
		},
	}
}

func lockedCommand() *cli.Command {
	return &cli.Command{
		Name:  "locked",
		Usage: "Report whether the device is locked",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			return withDevice(cmd, func(device *ecc508.Device) error {

				locked, err := device.Locked()
				if err != nil {
					return err
				}

				fmt.Println(locked)
				return nil
			})
		},
	}
}

func lockCommand() *cli.Command {
	return &cli.Command{
		Name:  "lock",
		Usage: "Permanently lock the configuration, data and OTP zones",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "force",
				Usage: "Confirm the irreversible lock",
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {

			if !cmd.Bool("force") {
				return fmt.Errorf("locking is permanent, pass --force to confirm")
			}

			return withDevice(cmd, func(device *ecc508.Device) error {
				return device.Lock()
			})
		},
	}
}

func genkeyCommand() *cli.Command {
	return &cli.Command{
		Name:  "genkey",
		Usage: "Generate a new private key in a slot and print its public key",
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:  "slot",
				Usage: "Key slot",
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			return withDevice(cmd, func(device *ecc508.Device) error {

				publicKey, err := device.GeneratePrivateKey(int(cmd.Int("slot")))
				if err != nil {
					return err
				}

				fmt.Printf("%x\n", publicKey)
				return nil
			})
		},
	}
}

func pubkeyCommand() *cli.Command {
	return &cli.Command{
		Name:  "pubkey",
		Usage: "Print the public key of an existing slot",
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:  "slot",
				Usage: "Key slot",
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			return withDevice(cmd, func(device *ecc508.Device) error {

				publicKey, err := device.GeneratePublicKey(int(cmd.Int("slot")))
				if err != nil {
					return err
				}

				fmt.Printf("%x\n", publicKey)
				return nil
			})
		},
	}
}

func signCommand() *cli.Command {
	return &cli.Command{
		Name:  "sign",
		Usage: "Sign a 32-byte digest with a slot's private key",
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:  "slot",
				Usage: "Key slot",
			},
			&cli.StringFlag{
				Name:  "digest",
				Usage: "Hex-encoded 32-byte message digest",
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {

			digest, err := hex.DecodeString(cmd.String("digest"))
			if err != nil {
				return fmt.Errorf("decode digest: %w", err)
			}

			return withDevice(cmd, func(device *ecc508.Device) error {

				signature, err := device.Sign(int(cmd.Int("slot")), digest)
				if err != nil {
					return err
				}

				fmt.Printf("%x\n", signature)
				return nil
			})
		},
	}
}

func verifyCommand() *cli.Command {
	return &cli.Command{
		Name:  "verify",
		Usage: "Verify a signature on the device",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "digest",
				Usage: "Hex-encoded 32-byte message digest",
			},
			&cli.StringFlag{
				Name:  "signature",
				Usage: "Hex-encoded 64-byte signature",
			},
			&cli.StringFlag{
				Name:  "public-key",
				Usage: "Hex-encoded 64-byte public key",
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {

			digest, err := hex.DecodeString(cmd.String("digest"))
			if err != nil {
				return fmt.Errorf("decode digest: %w", err)
			}

			signature, err := hex.DecodeString(cmd.String("signature"))
			if err != nil {
				return fmt.Errorf("decode signature: %w", err)
			}

			publicKey, err := hex.DecodeString(cmd.String("public-key"))
			if err != nil {
				return fmt.Errorf("decode public key: %w", err)
			}

			return withDevice(cmd, func(device *ecc508.Device) error {

				ok, err := device.Verify(digest, signature, publicKey)
				if err != nil {
					return err
				}

				if !ok {
					return fmt.Errorf("signature does not verify")
				}

				fmt.Println("ok")
				return nil
			})
		},
	}
}
