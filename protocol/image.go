package protocol

// Image is a binary blob destined for a fixed region of device memory.
// Data is never modified; padding produces a copy.
type Image struct {
	// Name identifies the image in logs and errors (e.g. "instructions")
	Name string

	// Base is the device address the first byte is written to
	Base uint32

	// Data is the raw image content, of arbitrary length
	Data []byte
}

// Chunk is one write-sized slice of a padded image.
type Chunk struct {
	// Offset is the position of the chunk within the padded image
	Offset int

	// Data is the chunk payload, at most TransferUnit bytes
	Data []byte
}

// Address returns the absolute device address of a chunk of the image.
func (img Image) Address(c Chunk) uint32 {
	return img.Base + uint32(c.Offset)
}

// PaddedLength returns n rounded up to the next multiple of Alignment.
func PaddedLength(n int) int {
	return (n + Alignment - 1) / Alignment * Alignment
}

// Pad returns a copy of data zero-extended to PaddedLength(len(data)).
func Pad(data []byte) []byte {
	padded := make([]byte, PaddedLength(len(data)))
	copy(padded, data)
	return padded
}

// Chunks pads the image and partitions it into TransferUnit-sized chunks in
// increasing offset order. Every chunk except possibly the last is exactly
// TransferUnit bytes. An empty image yields no chunks.
func (img Image) Chunks() []Chunk {
	padded := Pad(img.Data)

	chunks := make([]Chunk, 0, ChunkCount(len(img.Data)))
	for offset := 0; offset < len(padded); offset += TransferUnit {
		end := offset + TransferUnit
		if end > len(padded) {
			end = len(padded)
		}
		chunks = append(chunks, Chunk{Offset: offset, Data: padded[offset:end]})
	}

	return chunks
}

// ChunkCount returns how many chunks an image of n bytes is split into.
func ChunkCount(n int) int {
	return (PaddedLength(n) + TransferUnit - 1) / TransferUnit
}
