package liveset

import "encoding/xml"

// Live stores scalar properties as <Element Value="..."/>
type valueAttr struct {
	Value string `xml:"Value,attr"`
}

type documentXML struct {
	XMLName xml.Name   `xml:"Ableton"`
	LiveSet liveSetXML `xml:"LiveSet"`
}

type liveSetXML struct {
	Tracks []midiTrackXML `xml:"Tracks>MidiTrack"`
	Tempo  parameterXML   `xml:"MasterTrack>DeviceChain>Mixer>Tempo"`
}

type parameterXML struct {
	Manual valueAttr       `xml:"Manual"`
	Events []floatEventXML `xml:"ArrangerAutomation>Events>FloatEvent"`
}

type floatEventXML struct {
	Time          string `xml:"Time,attr"`
	Value         string `xml:"Value,attr"`
	CurveControlX string `xml:"CurveControl1X,attr"`
	CurveControlY string `xml:"CurveControl1Y,attr"`
}

type midiTrackXML struct {
	ID          string         `xml:"Id,attr"`
	Name        valueAttr      `xml:"Name>EffectiveName"`
	Volume      parameterXML   `xml:"DeviceChain>Mixer>Volume"`
	Pan         parameterXML   `xml:"DeviceChain>Mixer>Pan"`
	Controllers controllersXML `xml:"DeviceChain>MainSequencer>MidiControllers"`
	Clips       []midiClipXML  `xml:"DeviceChain>MainSequencer>ClipTimeable>ArrangerAutomation>Events>MidiClip"`
}

// children are named ControllerTargets.0, ControllerTargets.1, ...
type controllersXML struct {
	Targets []controllerXML `xml:",any"`
}

type controllerXML struct {
	XMLName xml.Name
	ID      string `xml:"Id,attr"`
}

type midiClipXML struct {
	ID           string            `xml:"Id,attr"`
	Name         valueAttr         `xml:"Name"`
	CurrentStart valueAttr         `xml:"CurrentStart"`
	CurrentEnd   valueAttr         `xml:"CurrentEnd"`
	Loop         loopXML           `xml:"Loop"`
	KeyTracks    []keyTrackXML     `xml:"Notes>KeyTracks>KeyTrack"`
	Envelopes    []clipEnvelopeXML `xml:"Envelopes>Envelopes>ClipEnvelope"`
}

type loopXML struct {
	LoopStart     valueAttr `xml:"LoopStart"`
	LoopEnd       valueAttr `xml:"LoopEnd"`
	StartRelative valueAttr `xml:"StartRelative"`
	LoopOn        valueAttr `xml:"LoopOn"`
}

type keyTrackXML struct {
	MidiKey valueAttr `xml:"MidiKey"`
	Notes   []noteXML `xml:"Notes>MidiNoteEvent"`
}

type noteXML struct {
	Time      string `xml:"Time,attr"`
	Duration  string `xml:"Duration,attr"`
	Velocity  string `xml:"Velocity,attr"`
	IsEnabled string `xml:"IsEnabled,attr"`
}

type clipEnvelopeXML struct {
	PointeeID valueAttr       `xml:"EnvelopeTarget>PointeeId"`
	Events    []floatEventXML `xml:"Automation>Events>FloatEvent"`
}
