// lin-go
// SPDX-License-Identifier: LGPL-3.0-or-later

package lin

import (
	"fmt"
	"time"

	"github.com/mestrode/lin-go/internal/frame"
	"github.com/mestrode/lin-go/internal/pdu"
)

// ServiceIdentifier is the first payload byte of a Node Configuration
// request (LIN 2.2A §4.2.3.5 / §4.2.5-4.2.6).
type ServiceIdentifier byte

const (
	sidAssignNAD            ServiceIdentifier = 0xB0
	sidReadByID             ServiceIdentifier = 0xB2
	sidConditionalChangeNAD ServiceIdentifier = 0xB3
	sidSaveConfiguration    ServiceIdentifier = 0xB6
	sidAssignFrameIDRange   ServiceIdentifier = 0xB7
)

// Read by Identifier command identifiers (LIN 2.2A §4.2.1).
const (
	cmdProductID    = 0x00
	cmdSerialNumber = 0x01
)

const negativeResponseMagic = 0x7F

// NegativeResponseCode is the third byte of a negative Node
// Configuration response (LIN 2.2A §4.2.3.5).
type NegativeResponseCode byte

const (
	NRCGeneralReject                  NegativeResponseCode = 0x10
	NRCServiceNotSupported            NegativeResponseCode = 0x11
	NRCSubfunctionNotSupported        NegativeResponseCode = 0x12
	NRCIncorrectMessageLengthOrFormat NegativeResponseCode = 0x13
	NRCResponseTooLong                NegativeResponseCode = 0x14
	NRCBusyRepeatRequest              NegativeResponseCode = 0x21
	NRCConditionsNotCorrect           NegativeResponseCode = 0x22
	NRCRequestOutOfRange              NegativeResponseCode = 0x31
	NRCSecurityAccessDenied           NegativeResponseCode = 0x33
	NRCInvalidKey                     NegativeResponseCode = 0x35
)

var nrcNames = map[NegativeResponseCode]string{
	NRCGeneralReject:                 "general reject",
	NRCServiceNotSupported:           "service not supported",
	NRCSubfunctionNotSupported:       "subfunction not supported",
	NRCIncorrectMessageLengthOrFormat: "incorrect message length or invalid format",
	NRCResponseTooLong:               "response too long",
	NRCBusyRepeatRequest:             "busy, repeat request",
	NRCConditionsNotCorrect:          "conditions not correct",
	NRCRequestOutOfRange:             "request out of range",
	NRCSecurityAccessDenied:          "security access denied",
	NRCInvalidKey:                    "invalid key",
}

// String renders the NRC using the LIN 2.2A name table, falling back to
// its numeric value for codes outside the table.
func (c NegativeResponseCode) String() string {
	if name, ok := nrcNames[c]; ok {
		return name
	}
	return fmt.Sprintf("unknown negative response code %#02x", byte(c))
}

// wildcard values for Assign NAD / Read by Identifier supplier/function
// filters (LIN 2.2A §4.2.3.5).
const (
	SupplierIDWildcard = 0x7FFF
	FunctionIDWildcard = 0x3FFF
)

// NodeConfig implements the LIN 2.2A Node Configuration service set over
// a TransportLayer: Assign NAD, Read by Identifier, Conditional Change
// NAD, Save Configuration, Assign Frame-ID Range, plus the non-transport
// Wake-up and Go-to-Sleep requests.
type NodeConfig struct {
	tl    *TransportLayer
	debug DebugSink
}

// NewNodeConfig builds a NodeConfig over tl.
func NewNodeConfig(tl *TransportLayer) *NodeConfig {
	return &NodeConfig{tl: tl, debug: tl.debug}
}

func rsid(sid ServiceIdentifier) byte {
	return byte(sid) | 0x40
}

// validate implements the shared response check of §4.7: absent is a
// failure, RSID = SID|0x40 is success (returning the bytes after RSID),
// a 0x7F frame with a decodable NRC is a failure logged at debug level,
// anything else is an unexpected-RSID failure.
func (n *NodeConfig) validate(sid ServiceIdentifier, response []byte, err error) ([]byte, error) {
	if err != nil {
		return nil, err
	}
	if len(response) == 0 {
		return nil, &ServiceError{Service: sid.name(), Err: ErrUnexpectedRsid}
	}
	if response[0] == rsid(sid) {
		return response[1:], nil
	}
	if response[0] == negativeResponseMagic && len(response) >= 3 {
		nrc := NegativeResponseCode(response[2])
		n.debug.Printf("%s: negative response: SID=%#02x NRC=%#02x (%s)", sid.name(), response[1], byte(nrc), nrc)
		return nil, &ServiceError{Service: sid.name(), Err: ErrNegativeResponse, NRC: nrc, HasNRC: true}
	}
	return nil, &ServiceError{Service: sid.name(), Err: ErrUnexpectedRsid}
}

func (s ServiceIdentifier) name() string {
	switch s {
	case sidAssignNAD:
		return "assign_nad"
	case sidReadByID:
		return "read_by_identifier"
	case sidConditionalChangeNAD:
		return "conditional_change_nad"
	case sidSaveConfiguration:
		return "save_configuration"
	case sidAssignFrameIDRange:
		return "assign_frame_id_range"
	default:
		return "unknown_service"
	}
}

func lowByte(v uint16) byte  { return byte(v) }
func highByte(v uint16) byte { return byte(v >> 8) }

// AssignNAD unconditionally assigns newNAD to the node currently
// addressed by nad (LIN 2.2A §4.2.5.1). The response always carries the
// node's original address, not the new one: the slave does not adopt
// newNAD as its response address for this exchange. nad is updated
// in-place only if the original request used the broadcast wildcard.
func (n *NodeConfig) AssignNAD(nad *byte, supplierID, functionID uint16, newNAD byte) error {
	payload := []byte{
		byte(sidAssignNAD),
		lowByte(supplierID), highByte(supplierID),
		lowByte(functionID), highByte(functionID),
		newNAD,
	}
	response, err := n.tl.WritePDU(nad, payload, 0)
	_, err = n.validate(sidAssignNAD, response, err)
	return err
}

// ReadByIdentifier issues the mandatory Read by Identifier service for
// an arbitrary command identifier id (LIN 2.2A §4.2.6.1) and returns the
// 5 response bytes that follow the RSID.
func (n *NodeConfig) ReadByIdentifier(nad *byte, supplierID, functionID uint16, id byte) ([]byte, error) {
	payload := []byte{
		byte(sidReadByID),
		id,
		lowByte(supplierID), highByte(supplierID),
		lowByte(functionID), highByte(functionID),
	}
	response, err := n.tl.WritePDU(nad, payload, 0)
	data, err := n.validate(sidReadByID, response, err)
	if err != nil {
		return nil, err
	}
	if len(data) < 5 {
		return nil, &ServiceError{Service: sidReadByID.name(), Err: ErrPduMalformed}
	}
	return data[:5], nil
}

// ReadProductID reads the mandatory product identification (LIN 2.2A
// §4.2.1, §4.2.6.1 with id=0): supplier ID, function ID and variant.
func (n *NodeConfig) ReadProductID(nad *byte, supplierID, functionID uint16) (respSupplierID, respFunctionID uint16, variant byte, err error) {
	data, err := n.ReadByIdentifier(nad, supplierID, functionID, cmdProductID)
	if err != nil {
		return 0, 0, 0, err
	}
	respSupplierID = uint16(data[1])<<8 | uint16(data[0])
	respFunctionID = uint16(data[3])<<8 | uint16(data[2])
	variant = data[4]
	return respSupplierID, respFunctionID, variant, nil
}

// ReadSerialNumber reads the optional serial number identification
// (LIN 2.2A §4.2.1, §4.2.6.1 with id=1) as a little-endian uint32.
func (n *NodeConfig) ReadSerialNumber(nad *byte, supplierID, functionID uint16) (uint32, error) {
	data, err := n.ReadByIdentifier(nad, supplierID, functionID, cmdSerialNumber)
	if err != nil {
		return 0, err
	}
	return uint32(data[0]) | uint32(data[1])<<8 | uint32(data[2])<<16 | uint32(data[3])<<24, nil
}

// ConditionalChangeNAD requests a node to adopt newNAD if, after
// extracting the data byte selected by byteIndex from the identifier
// selected by id, XOR-ing with invert and AND-ing with mask yields zero
// (LIN 2.2A §4.2.5.2). Unlike AssignNAD, the slave answers using newNAD,
// so nad is updated in-place on success regardless of whether the
// original request was a wildcard.
func (n *NodeConfig) ConditionalChangeNAD(nad *byte, id, byteIndex, mask, invert, newNAD byte) error {
	payload := []byte{byte(sidConditionalChangeNAD), id, byteIndex, mask, invert, newNAD}
	response, err := n.tl.WritePDU(nad, payload, newNAD)
	_, err = n.validate(sidConditionalChangeNAD, response, err)
	return err
}

// SaveConfiguration requests the node to persist its current
// configuration so it survives a power cycle (LIN 2.2A §4.2.5.4).
func (n *NodeConfig) SaveConfiguration(nad *byte) error {
	response, err := n.tl.WritePDU(nad, []byte{byte(sidSaveConfiguration)}, 0)
	_, err = n.validate(sidSaveConfiguration, response, err)
	return err
}

// AssignFrameIDRange assigns four consecutive Protected IDs, starting at
// startIndex, to the node's unconfigured frame slots (LIN 2.2A §4.2.5.5).
func (n *NodeConfig) AssignFrameIDRange(nad *byte, startIndex, pid0, pid1, pid2, pid3 byte) error {
	payload := []byte{byte(sidAssignFrameIDRange), startIndex, pid0, pid1, pid2, pid3}
	response, err := n.tl.WritePDU(nad, payload, 0)
	_, err = n.validate(sidAssignFrameIDRange, response, err)
	return err
}

// wakeupSettleDelay is the pause after the forced-dominant wake-up pulse
// before further bus activity, giving sleeping nodes time to wake (LIN
// 2.2A §2.6.2 allows 100-150ms).
const wakeupSettleDelay = 100 * time.Millisecond

// Wakeup requests a sleeping LIN cluster to wake up by forcing the bus
// dominant for one byte time at half baud rate, then waits for the bus
// to settle before further activity (LIN 2.2A §2.6.2).
func (n *NodeConfig) Wakeup() error {
	ft := n.tl.ft
	if err := ft.writeBreak(); err != nil {
		return err
	}
	ft.clock.Sleep(wakeupSettleDelay)
	return nil
}

// GoToSleep requests every node on the bus to enter sleep mode by
// sending a Master-Request frame whose PDU has NAD=0x00, PCI=0xFF and
// all data bytes 0xFF (LIN 2.2A §2.6.3). It bypasses the transport
// layer: there is no response to reassemble.
func (n *NodeConfig) GoToSleep() error {
	cmd := pdu.SleepCommand()
	return n.tl.ft.WriteFrame(frame.MasterRequestFID, cmd[:])
}
