package regs

// Link-level bytes.
const (
	// SyncRequest is sent by the master to establish a plain session.
	SyncRequest byte = 0xaa
	// SyncRequestChecksum requests a session with payload checksums.
	// The extension is acknowledged but checksums are not emitted.
	SyncRequestChecksum byte = 0xa5
	// SyncAck is the slave's reply to either sync request.
	SyncAck byte = 0x55
	// Ack precedes the payload of a successful reply.
	Ack byte = 0x06
	// Nak is the complete reply to a failed read.
	Nak byte = 0x15
	// ResyncByte fills the resync header pattern and the desync burst.
	ResyncByte byte = 0xff
)

// MaxMultibyteSize is the capacity of a multibyte register in bytes.
const MaxMultibyteSize = 29

// DesyncBurstLen is the number of ResyncByte bytes the slave emits on
// loss of synchronization. Longer than any possible in-flight frame so
// the master can detect the condition unambiguously.
const DesyncBurstLen = MaxMultibyteSize + 5
