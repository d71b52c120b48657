// Package bytecode defines the instruction set shared by every execution
// tier of the tape interpreter.
//
// # Architecture Overview
//
//   - Opcodes: the eight tape commands plus OpInvalid, which stands for any
//     source character that is not a command and executes as a no-op.
//     Token sequences produced by the lexer are plain []Opcode.
//
//   - Program: a run-length folded instruction list. Repeatable commands
//     carry a Count; loop delimiters carry the index of their partner in
//     Target. Programs are built with Emit and PatchTarget.
//
//   - Wire format: MarshalProgram and UnmarshalProgram encode programs as
//     canonical CBOR, so equal programs always produce equal bytes. Decoded
//     programs are checked with Verify before use.
//
//   - Disassembler: Disassemble renders a program one instruction per line
//     for debugging and for the -disasm flag of the bfi command.
//
// # Folding
//
// Adjacent identical repeatable commands collapse into one instruction:
//
//	+++++>>--   ->   INC x5, RIGHT x2, DEC x2
//
// Loop delimiters and OpInvalid never merge, so every bracket keeps its own
// instruction and Target can be patched after the run-length pass.
package bytecode
