package asm

import (
	"bytes"
	"testing"
)

func TestBinBufEmitAdvancesPC(t *testing.T) {
	b := NewBinBuf()
	b.SetOrigin(0x0800)
	b.Emit(0xA9)
	b.Emit(0x01)
	if b.PC() != 0x0802 {
		t.Fatalf("PC = %#x, want 0x0802", b.PC())
	}
	if got := b.Bytes(0x0800, 2); !bytes.Equal(got, []byte{0xA9, 0x01}) {
		t.Fatalf("Bytes = % X, want A9 01", got)
	}
}

func TestBinBufDummyRegionDoesNotPersist(t *testing.T) {
	b := NewBinBuf()
	b.SetOrigin(0x0800)
	b.Emit(0x11)
	if err := b.EnterDummy(0x2000); err != nil {
		t.Fatalf("EnterDummy: %v", err)
	}
	b.Emit(0xFF) // tracked in PC, not written to memory
	if b.PC() != 0x2001 {
		t.Fatalf("PC inside dummy = %#x, want 0x2001", b.PC())
	}
	if err := b.ExitDummy(); err != nil {
		t.Fatalf("ExitDummy: %v", err)
	}
	if b.PC() != 0x0801 {
		t.Fatalf("PC after DEND = %#x, want 0x0801 (restored)", b.PC())
	}
	if b.ByteAt(0x2000) != 0 {
		t.Fatalf("dummy-region byte was persisted: %#x", b.ByteAt(0x2000))
	}
}

func TestBinBufNestedDummyIsAnError(t *testing.T) {
	b := NewBinBuf()
	if err := b.EnterDummy(0x1000); err != nil {
		t.Fatalf("EnterDummy: %v", err)
	}
	if err := b.EnterDummy(0x2000); err == nil {
		t.Fatal("nested DUM must be an error")
	}
}

func TestBinBufDendWithoutDumIsAnError(t *testing.T) {
	b := NewBinBuf()
	if err := b.ExitDummy(); err == nil {
		t.Fatal("DEND without a matching DUM must be an error")
	}
}

func TestBinBufQueueCurrentRegion(t *testing.T) {
	b := NewBinBuf()
	b.SetOrigin(0x4000)
	b.Emit(1)
	b.Emit(2)
	b.Emit(3)
	b.QueueCurrentRegion("out.sav")

	writes := b.PendingWrites()
	if len(writes) != 1 {
		t.Fatalf("expected 1 pending write, got %d", len(writes))
	}
	w := writes[0]
	if w.path != "out.sav" || w.start != 0x4000 || w.length != 3 {
		t.Fatalf("pending write = %+v, want path=out.sav start=0x4000 length=3", w)
	}

	// A second region started after the queue snapshot must not reuse the
	// first region's byte count.
	b.Emit(4)
	b.QueueCurrentRegion("out2.sav")
	if b.PendingWrites()[1].length != 1 {
		t.Fatalf("second region length = %d, want 1", b.PendingWrites()[1].length)
	}
}

func TestBinBufQueueRW18Write(t *testing.T) {
	b := NewBinBuf()
	b.SetOrigin(0x1000)
	b.Emit(0xAA)
	b.QueueRW18Write("side.rw18", 0xA9, 3, 512, b.CurrentRegionLength())

	writes := b.PendingWrites()
	if len(writes) != 1 || !writes[0].rw18 {
		t.Fatalf("expected one rw18 pending write, got %+v", writes)
	}
	w := writes[0]
	if w.side != 0xA9 || w.track != 3 || w.offset != 512 || w.length != 1 {
		t.Fatalf("rw18 write = %+v, want side=0xA9 track=3 offset=512 length=1", w)
	}
}

func TestBinBufEmitAtRewritesWithoutMovingPC(t *testing.T) {
	b := NewBinBuf()
	b.SetOrigin(0x0800)
	b.Emit(0)
	b.Emit(0)
	pcBefore := b.PC()
	b.EmitWordAt(0x0800, 0x1234)
	if b.PC() != pcBefore {
		t.Fatal("EmitWordAt must not move the program counter")
	}
	if b.ByteAt(0x0800) != 0x34 || b.ByteAt(0x0801) != 0x12 {
		t.Fatalf("EmitWordAt wrote %#x %#x, want little-endian 34 12", b.ByteAt(0x0800), b.ByteAt(0x0801))
	}
}
