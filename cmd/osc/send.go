package main

import (
	"context"
	"strconv"
	"strings"

	"github.com/grailapp/go-osc/osc"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

func init() {
	sendCmd.Flags().BoolVar(&sendBundle, "bundle", false, "Wrap the message in an immediate bundle")
	sendCmd.Flags().IntVarP(&sendCount, "count", "n", 1, "Number of copies to send")
	sendCmd.Flags().IntVar(&sendParallel, "parallel", 1, "Number of concurrent senders")
	rootCmd.AddCommand(sendCmd)
}

var sendCmd = &cobra.Command{
	Use:   "send <host:port> <address> [arg]...",
	Short: "Send an OSC message",
	Long: "Send an OSC message to a UDP destination. Arguments are typed with a\n" +
		"prefix (i:42, u:7, h:42, f:1.5, d:1.5, s:text, c:x, b:bytes) or one of the\n" +
		"bare tags T, F, N, I; unprefixed arguments are inferred.",
	Args: cobra.MinimumNArgs(2),
	Run:  send,
}
var sendBundle bool
var sendCount int
var sendParallel int

func send(_ *cobra.Command, args []string) {
	target := args[0]
	msg := osc.NewMessage(args[1])
	for _, raw := range args[2:] {
		arg, err := parseArgument(raw)
		if err != nil {
			logrus.Fatalf("bad argument [%s] (%v)", raw, err)
		}
		if err := msg.Append(arg); err != nil {
			logrus.Fatalf("bad argument [%s] (%v)", raw, err)
		}
	}

	var packet osc.Packet = msg
	if sendBundle {
		b := osc.NewBundle()
		if err := b.Append(msg); err != nil {
			logrus.Fatalf("bundle (%v)", err)
		}
		packet = b
	}

	parallel := sendParallel
	if parallel < 1 {
		parallel = 1
	}
	perSender := sendCount / parallel
	remainder := sendCount % parallel

	eg, _ := errgroup.WithContext(context.Background())
	for i := 0; i < parallel; i++ {
		n := perSender
		if i < remainder {
			n++
		}
		if n == 0 {
			continue
		}
		eg.Go(func() error {
			client, err := osc.Dial(target)
			if err != nil {
				return err
			}
			defer func() { _ = client.Close() }()
			for j := 0; j < n; j++ {
				if err := client.Send(packet); err != nil {
					return err
				}
			}
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		logrus.Fatalf("send to [%s] (%v)", target, err)
	}
	logrus.Infof("sent %d packet(s) to [%s]: %s", sendCount, target, msg)
}

// parseArgument converts a command line token into an OSC argument. A single
// character prefix selects the type; without one the value is inferred.
func parseArgument(raw string) (interface{}, error) {
	switch raw {
	case "T":
		return true, nil
	case "F":
		return false, nil
	case "N":
		return nil, nil
	case "I":
		return osc.Impulse{}, nil
	}

	if len(raw) > 1 && raw[1] == ':' {
		val := raw[2:]
		switch raw[0] {
		case 'i':
			v, err := strconv.ParseInt(val, 10, 32)
			return int32(v), errors.Wrap(err, "int32")
		case 'u':
			v, err := strconv.ParseUint(val, 10, 32)
			return uint32(v), errors.Wrap(err, "uint32")
		case 'h':
			v, err := strconv.ParseInt(val, 10, 64)
			return v, errors.Wrap(err, "int64")
		case 'f':
			v, err := strconv.ParseFloat(val, 32)
			return float32(v), errors.Wrap(err, "float32")
		case 'd':
			v, err := strconv.ParseFloat(val, 64)
			return v, errors.Wrap(err, "float64")
		case 's':
			return val, nil
		case 'c':
			if len(val) != 1 {
				return nil, errors.Errorf("char wants exactly one byte, got %q", val)
			}
			return osc.Char(val[0]), nil
		case 'b':
			if len(val) == 0 {
				return nil, errors.New("blob may not be empty")
			}
			return []byte(val), nil
		}
	}

	// No recognized prefix: infer int32, then float32, then bool, else string.
	if v, err := strconv.ParseInt(raw, 10, 32); err == nil {
		return int32(v), nil
	}
	if v, err := strconv.ParseFloat(raw, 32); err == nil {
		return float32(v), nil
	}
	switch strings.ToLower(raw) {
	case "true":
		return true, nil
	case "false":
		return false, nil
	}
	return raw, nil
}
