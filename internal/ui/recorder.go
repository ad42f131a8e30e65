package ui

import "github.com/zhouzirui/cs-buddy/internal/model/chat"

// BlockKind tells message blocks from error banners.
type BlockKind string

const (
	BlockMessage BlockKind = "message"
	BlockError   BlockKind = "error"
)

// Block is one rendered element of a page.
type Block struct {
	Kind BlockKind
	Role chat.Role
	Text string
	// Updates lists every content a placeholder block went through.
	Updates []string
}

// Recorder is a Host that keeps the blocks of one render in order.
type Recorder struct {
	blocks []Block
}

// NewRecorder returns an empty recorder.
func NewRecorder() *Recorder {
	return &Recorder{}
}

func (r *Recorder) DisplayMessage(role chat.Role, text string) {
	r.blocks = append(r.blocks, Block{Kind: BlockMessage, Role: role, Text: text})
}

func (r *Recorder) Placeholder(role chat.Role) Placeholder {
	r.blocks = append(r.blocks, Block{Kind: BlockMessage, Role: role})
	return &recordedPlaceholder{recorder: r, index: len(r.blocks) - 1}
}

func (r *Recorder) ErrorBanner(text string) {
	r.blocks = append(r.blocks, Block{Kind: BlockError, Text: text})
}

// Blocks returns a copy of the recorded blocks.
func (r *Recorder) Blocks() []Block {
	blocks := make([]Block, len(r.blocks))
	for i, block := range r.blocks {
		block.Updates = append([]string(nil), block.Updates...)
		blocks[i] = block
	}
	return blocks
}

// Reset forgets every recorded block.
func (r *Recorder) Reset() {
	r.blocks = nil
}

type recordedPlaceholder struct {
	recorder *Recorder
	index    int
}

func (p *recordedPlaceholder) Update(text string) {
	block := &p.recorder.blocks[p.index]
	block.Text = text
	block.Updates = append(block.Updates, text)
}
