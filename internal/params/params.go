// Package params is the parameter facade of the transition core: the
// symbolic VT_*/FW_*/MPC_* parameters of spec §6, held in tear-free
// scalar fields and hot-reloadable from a YAML/JSON config file, the way
// OCAP2-extension/internal/config loads its viper-backed MemoryConfig.
package params

import (
	"fmt"
	"math"
	"sync/atomic"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

func bitsFromFloat64(v float64) uint64 { return math.Float64bits(v) }
func float64FromBits(b uint64) float64 { return math.Float64frombits(b) }

// scalar is a tear-free float64 slot backed by atomic bit storage, so a
// hot reload from a watcher goroutine never races a control-loop read.
type scalar struct{ bits atomic.Uint64 }

func (s *scalar) load() float64 {
	return float64FromBits(s.bits.Load())
}

func (s *scalar) store(v float64) {
	s.bits.Store(bitsFromFloat64(v))
}

// boolean is the tear-free equivalent of scalar for the three bool
// parameters: VT_ELEV_MC_LOCK, VT_ARSP_MODE and FW_ARSP_MODE.
type boolean struct{ v atomic.Bool }

func (b *boolean) load() bool   { return b.v.Load() }
func (b *boolean) store(v bool) { b.v.Store(v) }

// Params holds every symbolic parameter from spec §6.
type Params struct {
	vtFTransThr    scalar // VT_F_TRANS_THR
	vtPsherRmpDt   scalar // VT_PSHER_RMP_DT
	vtArspTrans    scalar // VT_ARSP_TRANS
	vtArspBlend    scalar // VT_ARSP_BLEND
	vtTransTimeout scalar // VT_TRANS_TIMEOUT
	vtBTransDur    scalar // VT_B_TRANS_DUR
	vtBTransRamp   scalar // VT_B_TRANS_RAMP (clamped <= VT_B_TRANS_DUR on load)
	vtBTransThr    scalar // VT_B_TRANS_THR
	vtBRevDel      scalar // VT_B_REV_DEL
	vtBRevOut      scalar // VT_B_REV_OUT
	vtElevMcLock   boolean
	vtArspMode     boolean // 0 = trust sensor -> false; nonzero -> true
	fwArspMode     boolean
	fwPspOff       scalar // FW_PSP_OFF, degrees
	mpcXyCruise    scalar // MPC_XY_CRUISE

	onChange []func(*Params)
}

// Default returns the parameter set at its PX4-style default values.
func Default() *Params {
	p := &Params{}
	p.vtFTransThr.store(0.75)
	p.vtPsherRmpDt.store(3.0)
	p.vtArspTrans.store(19.0)
	p.vtArspBlend.store(8.0)
	p.vtTransTimeout.store(15.0)
	p.vtBTransDur.store(6.0)
	p.vtBTransRamp.store(3.0)
	p.vtBTransThr.store(0.0)
	p.vtBRevDel.store(0.0)
	p.vtBRevOut.store(0.0)
	p.vtElevMcLock.store(true)
	p.vtArspMode.store(false)
	p.fwArspMode.store(false)
	p.fwPspOff.store(0.0)
	p.mpcXyCruise.store(5.0)
	return p
}

func (p *Params) VTFTransThr() float64    { return p.vtFTransThr.load() }
func (p *Params) VTPsherRmpDt() float64   { return p.vtPsherRmpDt.load() }
func (p *Params) VTArspTrans() float64    { return p.vtArspTrans.load() }
func (p *Params) VTArspBlend() float64    { return p.vtArspBlend.load() }
func (p *Params) VTTransTimeout() float64 { return p.vtTransTimeout.load() }
func (p *Params) VTBTransDur() float64    { return p.vtBTransDur.load() }
func (p *Params) VTBTransRamp() float64   { return p.vtBTransRamp.load() }
func (p *Params) VTBTransThr() float64    { return p.vtBTransThr.load() }
func (p *Params) VTBRevDel() float64      { return p.vtBRevDel.load() }
func (p *Params) VTBRevOut() float64      { return p.vtBRevOut.load() }
func (p *Params) VTElevMcLock() bool      { return p.vtElevMcLock.load() }
func (p *Params) VTArspMode() bool        { return p.vtArspMode.load() }
func (p *Params) FWArspMode() bool        { return p.fwArspMode.load() }
func (p *Params) FWPspOff() float64       { return p.fwPspOff.load() }
func (p *Params) MPCXyCruise() float64    { return p.mpcXyCruise.load() }

// clampBTransRamp enforces spec §5/§7: VT_B_TRANS_RAMP is clamped to at
// most VT_B_TRANS_DUR, the only parameter the core ever writes.
func (p *Params) clampBTransRamp() {
	ramp, dur := p.vtBTransRamp.load(), p.vtBTransDur.load()
	if ramp > dur {
		p.vtBTransRamp.store(dur)
	}
}

// OnChange registers a callback invoked after every successful (re)load,
// after the VT_B_TRANS_RAMP clamp has already been applied. Used by
// cmd/vtolfc-sim to log parameter reloads through internal/telemetry.
func (p *Params) OnChange(fn func(*Params)) {
	p.onChange = append(p.onChange, fn)
}

func (p *Params) applyFromViper(v *viper.Viper) {
	setIfPresent(v, "vt_f_trans_thr", p.vtFTransThr.store)
	setIfPresent(v, "vt_psher_rmp_dt", p.vtPsherRmpDt.store)
	setIfPresent(v, "vt_arsp_trans", p.vtArspTrans.store)
	setIfPresent(v, "vt_arsp_blend", p.vtArspBlend.store)
	setIfPresent(v, "vt_trans_timeout", p.vtTransTimeout.store)
	setIfPresent(v, "vt_b_trans_dur", p.vtBTransDur.store)
	setIfPresent(v, "vt_b_trans_ramp", p.vtBTransRamp.store)
	setIfPresent(v, "vt_b_trans_thr", p.vtBTransThr.store)
	setIfPresent(v, "vt_b_rev_del", p.vtBRevDel.store)
	setIfPresent(v, "vt_b_rev_out", p.vtBRevOut.store)
	setIfPresent(v, "fw_psp_off", p.fwPspOff.store)
	setIfPresent(v, "mpc_xy_cruise", p.mpcXyCruise.store)

	if v.IsSet("vt_elev_mc_lock") {
		p.vtElevMcLock.store(v.GetBool("vt_elev_mc_lock"))
	}
	if v.IsSet("vt_arsp_mode") {
		p.vtArspMode.store(v.GetInt("vt_arsp_mode") != 0)
	}
	if v.IsSet("fw_arsp_mode") {
		p.fwArspMode.store(v.GetInt("fw_arsp_mode") != 0)
	}

	p.clampBTransRamp()

	for _, fn := range p.onChange {
		fn(p)
	}
}

func setIfPresent(v *viper.Viper, key string, store func(float64)) {
	if v.IsSet(key) {
		store(v.GetFloat64(key))
	}
}

// Load builds a Params from defaults overlaid with the config file at
// path (YAML or JSON, sniffed by extension) and starts watching it for
// hot reload, calling registered OnChange callbacks on every change,
// mirroring the viper.WatchConfig pattern.
func Load(path string) (*Params, error) {
	p := Default()

	v := viper.New()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("params: reading config %q: %w", path, err)
	}

	p.applyFromViper(v)

	v.OnConfigChange(func(_ fsnotify.Event) {
		p.applyFromViper(v)
	})
	v.WatchConfig()

	return p, nil
}
