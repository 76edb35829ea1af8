// Copyright 2026 The ChromiumOS Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package emulator

import (
	"google.golang.org/protobuf/encoding/prototext"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/reflect/protodesc"
	"google.golang.org/protobuf/reflect/protoreflect"
	"google.golang.org/protobuf/types/descriptorpb"
	"google.golang.org/protobuf/types/dynamicpb"

	"go.chromium.org/wptandroid/errors"
)

// avdConfigDesc describes the subset of Chromium's AvdConfig message
// (tools/android/avd/proto/avd.proto) read by this package. Field numbers
// match the upstream schema so that real .textpb files parse.
var avdConfigDesc = mustBuildAvdDescriptor()

func field(name string, num int32, typ descriptorpb.FieldDescriptorProto_Type, msg string) *descriptorpb.FieldDescriptorProto {
	f := &descriptorpb.FieldDescriptorProto{
		Name:   proto.String(name),
		Number: proto.Int32(num),
		Label:  descriptorpb.FieldDescriptorProto_LABEL_OPTIONAL.Enum(),
		Type:   typ.Enum(),
	}
	if msg != "" {
		f.TypeName = proto.String(".tools.android.avd.proto." + msg)
	}
	return f
}

func message(name string, fields ...*descriptorpb.FieldDescriptorProto) *descriptorpb.DescriptorProto {
	return &descriptorpb.DescriptorProto{Name: proto.String(name), Field: fields}
}

func mustBuildAvdDescriptor() protoreflect.MessageDescriptor {
	const (
		str = descriptorpb.FieldDescriptorProto_TYPE_STRING
		u32 = descriptorpb.FieldDescriptorProto_TYPE_UINT32
		msg = descriptorpb.FieldDescriptorProto_TYPE_MESSAGE
	)
	fdp := &descriptorpb.FileDescriptorProto{
		Name:    proto.String("tools/android/avd/proto/avd.proto"),
		Package: proto.String("tools.android.avd.proto"),
		Syntax:  proto.String("proto3"),
		MessageType: []*descriptorpb.DescriptorProto{
			message("CIPDPackage",
				field("package_name", 1, str, ""),
				field("version", 2, str, ""),
				field("dest_path", 3, str, "")),
			message("ScreenSettings",
				field("height", 1, u32, ""),
				field("width", 2, u32, ""),
				field("density", 3, u32, "")),
			message("SdcardSettings",
				field("size", 1, str, "")),
			message("AvdSettings",
				field("screen", 1, msg, "ScreenSettings"),
				field("sdcard", 2, msg, "SdcardSettings"),
				field("ram_size", 4, u32, "")),
			message("AvdConfig",
				field("emulator_package", 1, msg, "CIPDPackage"),
				field("system_image_package", 2, msg, "CIPDPackage"),
				field("system_image_name", 3, str, ""),
				field("avd_package", 4, msg, "CIPDPackage"),
				field("avd_name", 5, str, ""),
				field("avd_settings", 6, msg, "AvdSettings")),
		},
	}
	fd, err := protodesc.NewFile(fdp, nil)
	if err != nil {
		panic(err)
	}
	return fd.Messages().ByName("AvdConfig")
}

// Package is a CIPD package unpacked under the source root.
type Package struct {
	Name     string
	Version  string
	DestPath string
}

// Settings holds the device shape of an AVD.
type Settings struct {
	ScreenHeight  uint32
	ScreenWidth   uint32
	ScreenDensity uint32
	SdcardSize    string
	RAMSizeMB     uint32
}

// Spec is a parsed AVD configuration.
type Spec struct {
	AVDName            string
	EmulatorPackage    Package
	SystemImagePackage Package
	SystemImageName    string
	AVDPackage         Package
	Settings           Settings
}

// ParseSpec parses an AVD configuration in protobuf text format. Fields this
// package does not use are ignored.
func ParseSpec(b []byte) (*Spec, error) {
	m := dynamicpb.NewMessage(avdConfigDesc)
	if err := (prototext.UnmarshalOptions{DiscardUnknown: true}).Unmarshal(b, m); err != nil {
		return nil, errors.Wrap(err, "failed to parse AVD config")
	}
	s := &Spec{
		AVDName:            stringField(m, "avd_name"),
		EmulatorPackage:    packageField(m, "emulator_package"),
		SystemImagePackage: packageField(m, "system_image_package"),
		SystemImageName:    stringField(m, "system_image_name"),
		AVDPackage:         packageField(m, "avd_package"),
	}
	if st := messageField(m, "avd_settings"); st != nil {
		if sc := messageField(st, "screen"); sc != nil {
			s.Settings.ScreenHeight = uint32Field(sc, "height")
			s.Settings.ScreenWidth = uint32Field(sc, "width")
			s.Settings.ScreenDensity = uint32Field(sc, "density")
		}
		if sd := messageField(st, "sdcard"); sd != nil {
			s.Settings.SdcardSize = stringField(sd, "size")
		}
		s.Settings.RAMSizeMB = uint32Field(st, "ram_size")
	}
	if s.AVDName == "" {
		return nil, errors.New("AVD config has no avd_name")
	}
	return s, nil
}

func fieldDesc(m protoreflect.Message, name string) protoreflect.FieldDescriptor {
	return m.Descriptor().Fields().ByName(protoreflect.Name(name))
}

func stringField(m protoreflect.Message, name string) string {
	return m.Get(fieldDesc(m, name)).String()
}

func uint32Field(m protoreflect.Message, name string) uint32 {
	return uint32(m.Get(fieldDesc(m, name)).Uint())
}

func messageField(m protoreflect.Message, name string) protoreflect.Message {
	fd := fieldDesc(m, name)
	if !m.Has(fd) {
		return nil
	}
	return m.Get(fd).Message()
}

func packageField(m protoreflect.Message, name string) Package {
	p := messageField(m, name)
	if p == nil {
		return Package{}
	}
	return Package{
		Name:     stringField(p, "package_name"),
		Version:  stringField(p, "version"),
		DestPath: stringField(p, "dest_path"),
	}
}
