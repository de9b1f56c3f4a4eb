package modbusctrl

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"

	mbserver "github.com/tbrandon/mbserver"
	"go.uber.org/zap"

	"github.com/Agrid-Dev/heatload/internal/ports"
)

// Config for the Modbus controller.
type Config struct {
	Addr   string
	UnitID byte // Modbus slave/unit ID, 1..247.
}

type Controller struct {
	svc    ports.ReportService
	cfg    Config
	logger *zap.Logger

	serv *mbserver.Server
}

func New(svc ports.ReportService, cfg Config, logger *zap.Logger) (*Controller, error) {
	if cfg.UnitID == 0 {
		return nil, errors.New("modbus: UnitID is required (non-zero)")
	}
	if cfg.Addr == "" {
		cfg.Addr = "127.0.0.1:1502"
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Controller{svc: svc, cfg: cfg, logger: logger.With(zap.String("controller", "modbus"))}, nil
}

// mbserver installs in-memory handlers for these by default; the register
// map is read-only, so they are all refused.
var unsupportedFunctions = []uint8{1, 2, 3, 5, 6, 15, 16}

func illegalFunction(_ *mbserver.Server, _ mbserver.Framer) ([]byte, *mbserver.Exception) {
	return []byte{}, &mbserver.IllegalFunction
}

// Run starts the Modbus server and answers input register reads from the
// current report. It blocks until ctx is canceled.
func (c *Controller) Run(ctx context.Context) error {
	serv := mbserver.NewServer()
	c.serv = serv

	// Register handlers BEFORE starting the TCP listener to avoid races inside mbserver
	// between handler registration and the server's goroutines.
	serv.RegisterFunctionHandler(4, c.readInputRegisters)
	for _, fc := range unsupportedFunctions {
		serv.RegisterFunctionHandler(fc, illegalFunction)
	}

	if err := serv.ListenTCP(c.cfg.Addr); err != nil {
		return fmt.Errorf("mbserver listen tcp %s: %w", c.cfg.Addr, err)
	}
	c.logger.Info("modbus controller listening", zap.String("addr", c.cfg.Addr))

	<-ctx.Done()
	serv.Close()
	return ctx.Err()
}

// Read Input Registers (function 4).
func (c *Controller) readInputRegisters(_ *mbserver.Server, frame mbserver.Framer) ([]byte, *mbserver.Exception) {
	data := frame.GetData()
	if len(data) < 4 {
		return []byte{}, &mbserver.IllegalDataValue
	}
	start := int(binary.BigEndian.Uint16(data[0:2]))
	qty := int(binary.BigEndian.Uint16(data[2:4]))
	if qty == 0 || qty > 125 {
		return []byte{}, &mbserver.IllegalDataValue
	}

	regs := registers(c.svc.Summary())
	if start+qty > len(regs) {
		return []byte{}, &mbserver.IllegalDataAddress
	}

	// Build response: byte count + register bytes
	byteCount := qty * 2
	resp := make([]byte, 1+byteCount)
	resp[0] = byte(byteCount)
	for i, r := range regs[start : start+qty] {
		binary.BigEndian.PutUint16(resp[1+i*2:1+i*2+2], r)
	}
	return resp, &mbserver.Success
}
