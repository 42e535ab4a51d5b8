package audioswitch

import (
	"fmt"
	"syscall"
	"unsafe"

	ole "github.com/go-ole/go-ole"
	wca "github.com/moutend/go-wca"
)

// IPolicyConfigVista isn't part of the public SDK, so go-wca doesn't ship it.
// The interface has been stable since Vista and is what the sound control panel uses
var (
	clsidCPolicyConfigVistaClient = ole.NewGUID("{294935CE-F637-4E7C-A41B-AB255460B862}")
	iidIPolicyConfigVista         = ole.NewGUID("{568B9108-44BF-40B4-9006-86AFE5B5A620}")
)

type iPolicyConfigVista struct {
	ole.IUnknown
}

// vtable order matters, every slot up to SetDefaultEndpoint must be declared
type iPolicyConfigVistaVtbl struct {
	ole.IUnknownVtbl
	GetMixFormat          uintptr
	GetDeviceFormat       uintptr
	SetDeviceFormat       uintptr
	GetProcessingPeriod   uintptr
	SetProcessingPeriod   uintptr
	GetShareMode          uintptr
	SetShareMode          uintptr
	GetPropertyValue      uintptr
	SetPropertyValue      uintptr
	SetDefaultEndpoint    uintptr
	SetEndpointVisibility uintptr
}

func (v *iPolicyConfigVista) VTable() *iPolicyConfigVistaVtbl {
	return (*iPolicyConfigVistaVtbl)(unsafe.Pointer(v.RawVTable))
}

func (v *iPolicyConfigVista) SetDefaultEndpoint(deviceID string, role Role) error {
	wideID, err := syscall.UTF16PtrFromString(deviceID)
	if err != nil {
		return fmt.Errorf("convert device id: %w", err)
	}

	hr, _, _ := syscall.SyscallN(
		v.VTable().SetDefaultEndpoint,
		uintptr(unsafe.Pointer(v)),
		uintptr(unsafe.Pointer(wideID)),
		uintptr(role),
	)
	if hr != 0 {
		return ole.NewError(hr)
	}

	return nil
}

// setDefaultEndpoint makes the endpoint with the given id the default for role.
// The policy config object lives only for the duration of the call
func setDefaultEndpoint(deviceID string, role Role) error {
	var policyConfig *iPolicyConfigVista

	if err := wca.CoCreateInstance(
		clsidCPolicyConfigVistaClient,
		0,
		wca.CLSCTX_ALL,
		iidIPolicyConfigVista,
		&policyConfig,
	); err != nil {
		return fmt.Errorf("create policy config client: %w", err)
	}
	defer policyConfig.Release()

	return policyConfig.SetDefaultEndpoint(deviceID, role)
}
