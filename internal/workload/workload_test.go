package workload

import (
	"encoding/binary"
	"os"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCPUSpinDeterministic(t *testing.T) {
	require.Equal(t, CPUSpin(1000), CPUSpin(1000))
	require.NotZero(t, CPUSpin(10))
}

func TestCPUSpinPhasedEquivalence(t *testing.T) {
	require.Equal(t, CPUSpin(100), CPUSpinPhased(100, 1))
}

func TestStreamReadWriteCopy(t *testing.T) {
	buf := make([]byte, 8*128)
	StreamWrite(buf)
	sum := StreamRead(buf)
	require.NotZero(t, sum)

	dst := make([]byte, len(buf))
	StreamCopy(dst, buf)
	require.Equal(t, buf, dst)
}

func TestStreamStridedSequentialMatchesReadOnUnitStride(t *testing.T) {
	// Unit stride reads the leading word of every cache line in order, so it
	// matches StreamRead when only those leading words carry data.
	buf := make([]byte, 8*64)
	for line := 0; line*cacheLineSize < len(buf); line++ {
		binary.LittleEndian.PutUint64(buf[line*cacheLineSize:], uint64(line+1))
	}
	require.Equal(t, StreamRead(buf), StreamStrided(buf, 1))
	require.Equal(t, StreamStrided(buf, 1), StreamStrided(buf, 0))
}

func TestBuildChainVisitsAllSlotsExactlyOnce(t *testing.T) {
	const n = 128
	buf := make([]byte, n*8)
	BuildChain(buf, 42)

	seen := make(map[uint64]bool, n)
	var idx uint64
	for i := 0; i < n; i++ {
		seen[idx] = true
		idx = ChasePointers(buf[idx*8:idx*8+8], 1)
	}
	require.Len(t, seen, n)
}

func TestChasePointersReturnsToStartAfterFullCycle(t *testing.T) {
	const n = 64
	buf := make([]byte, n*8)
	BuildChain(buf, 7)
	visited := ChasePointers(buf, uint64(n))
	require.Equal(t, uint64(0), visited)
}

func TestRandomReadUsesModuloOnIndices(t *testing.T) {
	buf := make([]byte, 8*4)
	StreamWrite(buf)
	indices := []uint64{0, 100, 4, 1000}
	sum := RandomRead(buf, indices)
	require.NotPanics(t, func() { RandomRead(buf, indices) })
	require.Equal(t, sum, RandomRead(buf, indices))
}

func TestLockWorkloadAllVariantsPreserveCount(t *testing.T) {
	for _, kind := range []LockKind{LockBusyWait, LockMutex, LockAtomic} {
		w, err := NewLockWorkload(4, 1000, false)
		require.NoError(t, err)
		require.NoError(t, w.Run(kind))
		require.Equal(t, uint64(4000), w.Counter(kind), "lock kind %s lost updates", kind)
	}
}

func TestLockWorkloadRejectsInvalidParams(t *testing.T) {
	_, err := NewLockWorkload(0, 10, false)
	require.Error(t, err)
}

func TestMixedWorkloadDeterministic(t *testing.T) {
	m1 := NewMixedWorkload(4096, 100, 2, 5)
	m2 := NewMixedWorkload(4096, 100, 2, 5)
	require.Equal(t, m1.Run(), m2.Run())
}

func TestBranchSumAndBranchlessSumAgree(t *testing.T) {
	data := GenerateBranchInput(1000, BranchRandom, 1)
	require.Equal(t, BranchSum(data, 128), BranchlessSum(data, 128))
}

func TestTLBTouchNonEmptyBuffer(t *testing.T) {
	buf := make([]byte, 4096*8)
	StreamWrite(buf)
	require.NotZero(t, TLBTouch(buf, 4096, 1, 100))
}

func TestTLBTouchWrapsWithinBuffer(t *testing.T) {
	// A 16-page step over a 4-page buffer wraps to offset 0 on every touch.
	buf := make([]byte, 4096*4)
	StreamWrite(buf)
	binary.LittleEndian.PutUint64(buf, 1)
	require.Equal(t, uint64(10_000), TLBTouch(buf, 4096, 16, 10_000))
}

func TestFalseSharingBothLayoutsPreserveCounts(t *testing.T) {
	for _, layout := range []FalseSharingLayout{LayoutPacked, LayoutPadded} {
		results := RunFalseSharing(4, 10000, layout)
		for _, r := range results {
			require.Equal(t, uint64(10000), r)
		}
	}
}

func TestRunRWLockDoesNotLoseWriterUpdates(t *testing.T) {
	final := RunRWLock(4, 1000, 50, 1)
	require.Positive(t, final)
	require.LessOrEqual(t, final, uint64(4*1000))
}

func TestAtomicVariantsAgreeOnFinalCount(t *testing.T) {
	var c1, c2 uint64
	RelaxedAdd(&c1, 5000)
	CompareAndSwapLoop(&c2, 5000)
	require.Equal(t, uint64(5000), c1)
	require.Equal(t, uint64(5000), c2)
}

func TestContendedAddSumsAcrossThreads(t *testing.T) {
	require.Equal(t, uint64(4*2000), ContendedAdd(4, 2000))
}

func TestSIMDVariantsAgree(t *testing.T) {
	n := 37 // deliberately not a multiple of 4 or 8, exercises tail handling
	mk := func() ([]float32, []float32) {
		a := make([]float32, n)
		b := make([]float32, n)
		for i := range a {
			a[i] = float32(i)
			b[i] = float32(i * 2)
		}
		return a, b
	}

	a1, b1 := mk()
	ScalarAdd(a1, b1)
	a2, b2 := mk()
	VectorAdd128(a2, b2)
	a3, b3 := mk()
	VectorAdd256(a3, b3)

	require.Equal(t, a1, a2)
	require.Equal(t, a1, a3)
}

func TestDotProductVariantsAgree(t *testing.T) {
	a := []float32{1, 2, 3, 4, 5, 6, 7, 8, 9}
	b := []float32{9, 8, 7, 6, 5, 4, 3, 2, 1}
	require.InDelta(t, ScalarDotProduct(a, b), VectorDotProduct(a, b), 1e-6)
}

func TestFileIOSequentialReadWriteRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path, err := TestFile(dir, 4096)
	require.NoError(t, err)
	defer os.Remove(path)

	sum, err := SequentialRead(path)
	require.NoError(t, err)
	require.NotZero(t, sum)
}

func TestRandomSeekReadWithinBounds(t *testing.T) {
	dir := t.TempDir()
	path, err := TestFile(dir, 64*1024)
	require.NoError(t, err)
	defer os.Remove(path)

	_, err = RandomSeekRead(path, 64*1024, 4096, 8, 3)
	require.NoError(t, err)
}

func TestMmapSequentialAndRandomAccess(t *testing.T) {
	dir := t.TempDir()
	path, err := TestFile(dir, 8192)
	require.NoError(t, err)
	defer os.Remove(path)

	_, err = MmapSequentialRead(path)
	require.NoError(t, err)

	_, err = MmapRandomAccess(path, 16, 9)
	require.NoError(t, err)
}

func TestSpawnAndReapForkExec(t *testing.T) {
	if _, err := os.Stat("/bin/true"); err != nil {
		t.Skip("/bin/true not present")
	}
	require.NoError(t, SpawnAndReap(ProcessForkExec))
}

func TestLockWorkloadSizeFitsBudget(t *testing.T) {
	w, err := NewLockWorkload(2, 10, false)
	require.NoError(t, err)
	require.Positive(t, w.Size())
	require.LessOrEqual(t, w.Size(), maxLockWorkloadSize)
}

func TestHugePageOrdinaryAllocation(t *testing.T) {
	buf, err := AllocHugePageBuffer(4096, PageOrdinary)
	require.NoError(t, err)
	defer buf.Free()
	require.False(t, buf.Degraded)
	// The mapping is zero-filled and a one-page step over one page touches
	// offset 0 every time, so mark that word to make the sum observable.
	binary.LittleEndian.PutUint64(buf.Mem, 1)
	require.Equal(t, uint64(100), HugePageAccess(buf, 4096, 1, 100))
}

func TestGenerateIndicesWithinBounds(t *testing.T) {
	indices := GenerateIndices(100, 10, 1)
	for _, idx := range indices {
		require.Less(t, idx, uint64(10))
	}
}

func TestBranchInputSortedIsSorted(t *testing.T) {
	data := GenerateBranchInput(500, BranchSorted, 1)
	for i := 1; i < len(data); i++ {
		require.LessOrEqual(t, data[i-1], data[i])
	}
}
