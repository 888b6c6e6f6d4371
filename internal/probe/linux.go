// Copyright 2026, Zenith contributors.
// SPDX-License-Identifier: Apache-2.0

package probe

import (
	"context"
	"os/user"
	"sync"
	"syscall"
	"time"

	"github.com/shirou/gopsutil/v4/cpu"
	"github.com/shirou/gopsutil/v4/disk"
	"github.com/shirou/gopsutil/v4/load"
	"github.com/shirou/gopsutil/v4/mem"
	"github.com/shirou/gopsutil/v4/net"
	"github.com/shirou/gopsutil/v4/process"
	"golang.org/x/sys/unix"

	"github.com/zenith-tui/zenith/internal/zmodel"
)

// linuxCapabilities realizes Capabilities on Linux using gopsutil for the
// generic OS metrics and /sys/class/power_supply + golang.org/x/sys/unix
// for the two leaves gopsutil doesn't cover (battery, signal/renice).
// Grounded on pkg/wshrpc/wshremote/sysinfo.go (cpu/mem) and
// pkg/pstrack/pstrack.go (process walk), generalized from their
// hardcoded single-field reads into the full Capabilities contract.
type linuxCapabilities struct {
	userCacheMu sync.Mutex
	userCache   map[uint32]string
}

// New returns the platform Capabilities implementation. Linux is the only
// supported OS (Windows is out of scope; this build assumes
// a Linux or Linux-like /proc, matching the corpus's own Linux-only
// probe examples).
func New() Capabilities {
	return &linuxCapabilities{userCache: make(map[uint32]string)}
}

func (c *linuxCapabilities) SampleCPU(ctx context.Context) ([]float64, float64, [3]float64, error) {
	aggArr, err := cpu.PercentWithContext(ctx, 0, false)
	if err != nil {
		return nil, 0, [3]float64{}, wrap(KindTransient, "cpu", err)
	}
	var aggregate float64
	if len(aggArr) > 0 {
		aggregate = aggArr[0]
	}
	perCore, err := cpu.PercentWithContext(ctx, 0, true)
	if err != nil {
		return nil, aggregate, [3]float64{}, wrap(KindTransient, "cpu.percore", err)
	}
	var avg [3]float64
	if la, err := load.AvgWithContext(ctx); err == nil {
		avg = [3]float64{la.Load1, la.Load5, la.Load15}
	}
	return perCore, aggregate, avg, nil
}

func (c *linuxCapabilities) SampleMemory(ctx context.Context) (MemInfo, error) {
	vm, err := mem.VirtualMemoryWithContext(ctx)
	if err != nil {
		return MemInfo{}, wrap(KindTransient, "mem", err)
	}
	sw, err := mem.SwapMemoryWithContext(ctx)
	var swapUsed uint64
	if err == nil && sw != nil {
		swapUsed = sw.Used
	}
	return MemInfo{
		Total:     vm.Total,
		Used:      vm.Used,
		Available: vm.Available,
		SwapUsed:  swapUsed,
	}, nil
}

func (c *linuxCapabilities) ListNetworkInterfaces(ctx context.Context) ([]zmodel.NicCounters, error) {
	stats, err := net.IOCountersWithContext(ctx, true)
	if err != nil {
		return nil, wrap(KindTransient, "net", err)
	}
	out := make([]zmodel.NicCounters, 0, len(stats))
	for _, s := range stats {
		out = append(out, zmodel.NicCounters{
			Name:    s.Name,
			RxBytes: s.BytesRecv,
			TxBytes: s.BytesSent,
			RxPkts:  s.PacketsRecv,
			TxPkts:  s.PacketsSent,
		})
	}
	return out, nil
}

func (c *linuxCapabilities) ListMounts(ctx context.Context) ([]zmodel.MountCounters, error) {
	parts, err := disk.PartitionsWithContext(ctx, false)
	if err != nil {
		return nil, wrap(KindTransient, "disk.partitions", err)
	}
	ioStats, _ := disk.IOCountersWithContext(ctx)
	out := make([]zmodel.MountCounters, 0, len(parts))
	for _, p := range parts {
		usage, err := disk.UsageWithContext(ctx, p.Mountpoint)
		if err != nil {
			continue
		}
		mc := zmodel.MountCounters{
			MountPoint: p.Mountpoint,
			Device:     p.Device,
			FSType:     p.Fstype,
			Total:      usage.Total,
			Available:  usage.Free,
		}
		if io, ok := ioStats[deviceBase(p.Device)]; ok {
			mc.ReadBytes = io.ReadBytes
			mc.WriteBytes = io.WriteBytes
		}
		out = append(out, mc)
	}
	return out, nil
}

func (c *linuxCapabilities) SampleBattery(ctx context.Context) (*zmodel.Battery, error) {
	b, err := readSysPowerSupply()
	if err != nil {
		return nil, wrap(KindProbeUnavailable, "battery", err)
	}
	return b, nil
}

func (c *linuxCapabilities) SampleGPUs(ctx context.Context) ([]zmodel.GPUInfo, error) {
	return sampleGPUsStub(ctx)
}

func (c *linuxCapabilities) SampleProcesses(ctx context.Context) ([]zmodel.ProcessSample, error) {
	procs, err := process.ProcessesWithContext(ctx)
	if err != nil {
		return nil, wrap(KindTransient, "process", err)
	}
	out := make([]zmodel.ProcessSample, 0, len(procs))
	for _, p := range procs {
		sample, ok := c.sampleOne(ctx, p)
		if !ok {
			continue
		}
		out = append(out, sample)
	}
	return out, nil
}

func (c *linuxCapabilities) sampleOne(ctx context.Context, p *process.Process) (zmodel.ProcessSample, bool) {
	// Best-effort: a process can exit mid-walk; skip it rather than
	// abort the whole tick (individual probe failures
	// never abort a tick).
	createTime, err := p.CreateTimeWithContext(ctx)
	if err != nil {
		return zmodel.ProcessSample{}, false
	}
	ppid, _ := p.PpidWithContext(ctx)
	uids, _ := p.UidsWithContext(ctx)
	var uid uint32
	if len(uids) > 0 {
		uid = uint32(uids[0])
	}
	cmd, _ := p.NameWithContext(ctx)
	cmdline, _ := p.CmdlineWithContext(ctx)
	statusArr, _ := p.StatusWithContext(ctx)
	status := zmodel.ProcSleeping
	if len(statusArr) > 0 && len(statusArr[0]) > 0 {
		status = zmodel.ProcStatus(statusArr[0][0])
	}
	times, _ := p.TimesWithContext(ctx)
	memInfo, _ := p.MemoryInfoWithContext(ctx)
	ioCounters, _ := p.IOCountersWithContext(ctx)
	nice, _ := p.NiceWithContext(ctx)
	threads, _ := p.NumThreadsWithContext(ctx)

	s := zmodel.ProcessSample{
		PID:       p.Pid,
		PPID:      ppid,
		UID:       uid,
		Command:   cmd,
		Cmdline:   cmdline,
		Status:    status,
		Priority:  nice, // gopsutil does not expose raw priority separately on linux
		Nice:      nice,
		Threads:   threads,
		StartTime: createTime,
	}
	if times != nil {
		s.CPUTimeUser = time.Duration(times.User * float64(time.Second))
		s.CPUTimeSystem = time.Duration(times.System * float64(time.Second))
	}
	if memInfo != nil {
		s.RSSBytes = memInfo.RSS
		s.VSSBytes = memInfo.VMS
	}
	if ioCounters != nil {
		s.ReadBytesCum = ioCounters.ReadBytes
		s.WriteBytesCum = ioCounters.WriteBytes
	}
	return s, true
}

func (c *linuxCapabilities) SendSignal(pid int32, sig int) error {
	err := unix.Kill(int(pid), syscall.Signal(sig))
	if err != nil {
		if err == unix.EPERM {
			return wrap(KindPermission, "signal", err)
		}
		if err == unix.ESRCH {
			return wrap(KindNotFound, "signal", err)
		}
		return wrap(KindTransient, "signal", err)
	}
	return nil
}

func (c *linuxCapabilities) Renice(pid int32, nice int) error {
	err := unix.Setpriority(unix.PRIO_PROCESS, int(pid), nice)
	if err != nil {
		if err == unix.EPERM || err == unix.EACCES {
			return wrap(KindPermission, "renice", err)
		}
		if err == unix.ESRCH {
			return wrap(KindNotFound, "renice", err)
		}
		return wrap(KindTransient, "renice", err)
	}
	return nil
}

func (c *linuxCapabilities) ResolveUsername(uid uint32) (string, bool) {
	c.userCacheMu.Lock()
	if name, ok := c.userCache[uid]; ok {
		c.userCacheMu.Unlock()
		return name, true
	}
	c.userCacheMu.Unlock()

	u, err := user.LookupId(itoa(uid))
	if err != nil {
		return "", false
	}
	c.userCacheMu.Lock()
	c.userCache[uid] = u.Username
	c.userCacheMu.Unlock()
	return u.Username, true
}

func itoa(u uint32) string {
	if u == 0 {
		return "0"
	}
	var buf [10]byte
	i := len(buf)
	for u > 0 {
		i--
		buf[i] = byte('0' + u%10)
		u /= 10
	}
	return string(buf[i:])
}

func deviceBase(device string) string {
	// disk.IOCounters keys by bare device name (e.g. "sda"), while
	// partitions report the full node path (e.g. "/dev/sda1"); strip the
	// common prefix and any trailing partition digits are left as-is
	// since gopsutil already keys whole disks, not partitions.
	for i := len(device) - 1; i >= 0; i-- {
		if device[i] == '/' {
			return device[i+1:]
		}
	}
	return device
}
