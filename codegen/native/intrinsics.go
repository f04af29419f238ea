// ==============================================================================================
// FILE: codegen/native/intrinsics.go
// ==============================================================================================
// PACKAGE: native
// PURPOSE: Hand-written NASM for the three built-in functions and the
//          bump allocator backing alloc/new/free, prepended to every
//          generated translation unit ahead of user functions.
// ==============================================================================================

package native

// runtimeIntrinsics is emitted verbatim before any user function. It relies
// on the .bss symbols print_buf, read_buf, arena_ptr and arena, all declared
// by Generate.
const runtimeIntrinsics = `
; ignis_print_int(n): writes the decimal rendering of the signed integer in
; rdi to stdout, followed by a newline.
ignis_print_int:
    push rbp
    mov rbp, rsp
    mov rax, rdi
    lea rsi, [print_buf+31]
    mov byte [rsi], 10
    mov rcx, 1
    mov r8, 0
    cmp rax, 0
    jge .nonneg
    mov r8, 1
    neg rax
.nonneg:
    mov r9, 10
.digit_loop:
    xor rdx, rdx
    div r9
    add dl, '0'
    dec rsi
    mov [rsi], dl
    inc rcx
    cmp rax, 0
    jne .digit_loop
    cmp r8, 0
    je .have_digits
    dec rsi
    mov byte [rsi], '-'
    inc rcx
.have_digits:
    mov rax, 1
    mov rdi, 1
    mov rdx, rcx
    syscall
    mov rax, 0
    pop rbp
    ret

; ignis_putchar(c): writes the single byte in dil to stdout.
ignis_putchar:
    push rbp
    mov rbp, rsp
    mov [read_buf], dil
    mov rax, 1
    mov rdi, 1
    lea rsi, [read_buf]
    mov rdx, 1
    syscall
    movzx rax, byte [read_buf]
    pop rbp
    ret

; ignis_getchar(): reads one byte from stdin, returning it zero-extended, or
; -1 on end of input.
ignis_getchar:
    push rbp
    mov rbp, rsp
    mov rax, 0
    mov rdi, 0
    lea rsi, [read_buf]
    mov rdx, 1
    syscall
    cmp rax, 0
    jle .eof
    movzx rax, byte [read_buf]
    pop rbp
    ret
.eof:
    mov rax, -1
    pop rbp
    ret

; ignis_alloc(size): bumps the arena pointer and returns the previous value.
; There is no free list; ignis_free is a no-op release back to the arena,
; matching the documented bump-allocator-over-static-arena design.
ignis_alloc:
    push rbp
    mov rbp, rsp
    mov rax, [arena_ptr]
    add rdi, 7
    and rdi, -8
    lea rcx, [rax+rdi]
    mov [arena_ptr], rcx
    pop rbp
    ret

; ignis_free(ptr): intentionally a no-op. See ignis_alloc.
ignis_free:
    mov rax, 0
    ret

`
